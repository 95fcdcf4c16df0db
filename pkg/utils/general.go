package utils

import (
	"github.com/spf13/viper"
)

// ResponseData is the envelope every REST handler returns.
type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics with the given error so the recovery middleware
// can translate it into the proper HTTP response.
func PanicIfNeeded(err any, message ...string) {
	if err != nil {
		if len(message) > 0 {
			panic(message[0])
		}
		panic(err)
	}
}

// LoadConfig reads the .env file (if present) and environment variables
// into viper so cmd flags and core/config can consume them.
func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Missing .env is fine; environment variables still apply.
	_ = viper.ReadInConfig()
}
