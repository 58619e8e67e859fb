// Package mongo connects the MongoDB-backed tenant store.
//
// Config is read from MONGODB_* environment variables; New returns a pinged
// *mongo.Client and Healthcheck adapts it to the readiness probe.
package mongo
