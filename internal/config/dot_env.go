package config

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/subosito/gotenv"
)

// DotEnvTryLoad loads the dotenv file at path into the environment without
// overriding variables that are already set. A missing file is ignored.
func DotEnvTryLoad(path string) {
	if err := gotenv.Load(path); err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to load dotenv file")
		}
		return
	}

	log.Debug().Str("path", path).Msg("Loaded dotenv file")
}

// DotEnvMustOverload applies the dotenv file at path, overriding set variables
func DotEnvMustOverload(path string) {
	if err := gotenv.OverLoad(path); err != nil {
		log.Panic().Err(err).Str("path", path).Msg("Failed to overload dotenv file")
	}
}
