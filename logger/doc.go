// Package logger provides structured logging for the injector using
// zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped child loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("billing").WithComponent("di")
//	log.Debug("singleton built", logger.Fields("type", "*db.Pool"))
package logger
