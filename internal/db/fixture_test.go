package db

import "github.com/shinyyama/village-market/internal/config"

type configFixture struct {
	dsn      string
	host     string
	instance string
}

func (f configFixture) build() *config.Config {
	return &config.Config{
		DatabaseDSN:            f.dsn,
		DBUser:                 "u",
		DBPassword:             "p",
		DBHost:                 f.host,
		DBPort:                 "3306",
		DBName:                 "market",
		InstanceConnectionName: f.instance,
	}
}
