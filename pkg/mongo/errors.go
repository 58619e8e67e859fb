package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
	ErrEmptyDatabase          = errors.New("mongo database name is empty, set MONGODB_DATABASE")
)
