package config

const (
	EnvPrefix = "CAREERFORGE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CAREERFORGE_DB_DSN"
	EnvDBHost = "CAREERFORGE_DB_HOST"
	EnvDBUser = "CAREERFORGE_DB_USER"
	EnvDBName = "CAREERFORGE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
