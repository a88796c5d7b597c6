package main

// General API documentation for swaggo. The generated document lives in
// package docs; build with -tags=swagger to serve it under /swagger/.
//
// @title           eventloopd API
// @version         1.0
// @description     HTTP API for posting events to hosted event queues and reading published state.
//
// @contact.name   eventloopd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
