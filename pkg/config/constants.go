package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "PALABRES"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "PALABRES_DB_DSN"
	EnvDBHost = "PALABRES_DB_HOST"
	EnvDBUser = "PALABRES_DB_USER"
	EnvDBName = "PALABRES_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
