package couchdb

import (
	"context"
	"fmt"

	"github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb"
	"github.com/iotflow/iotflow/pkg/config"
	"github.com/sirupsen/logrus"
)

func CreateCouchDBConnection(logger *logrus.Entry, cfg config.CouchDBConfig, dbs []string) (*kivik.Client, error) {
	address := fmt.Sprintf("%s://%s:%s@%s:%d", cfg.Protocol, cfg.Username, cfg.Password, cfg.Hostname, cfg.Port)
	client, err := kivik.New("couch", address)
	if err != nil {
		return nil, err
	}

	ping, err := client.Ping(context.Background())
	if err != nil {
		return nil, err
	}
	if !ping {
		return nil, fmt.Errorf("no connectivity with couchdb")
	}

	for _, db := range dbs {
		if exists, err := client.DBExists(context.TODO(), db); err == nil && !exists {
			logger.Warnf("db does not exist. Creating db: %s", db)
			if err := client.CreateDB(context.TODO(), db); err != nil {
				logger.Errorf("could not create db %s: %s", db, err)
				return nil, err
			}
		}
	}

	return client, nil
}
