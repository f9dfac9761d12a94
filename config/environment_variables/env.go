package environment_variables

import (
	"fmt"
	"os"
	"reflect"
	"strings"
)

type EnvironmentVariable struct {
	APP_ENV                 string
	APP_CONFIG_FILE         string
	HTTP_PORT               string
	LOG_LEVEL               string
	JWT_SECRET              []byte
	DB_POSTGRESQL_WRITE_DSN string
	DB_POSTGRESQL_READ1_DSN string
	CACHE_TYPE              string
	CACHE_URL               string
	CACHE_PASSWORD          string
	CACHE_DB                string
	REDIS_URL               string
	CATALOG_SOURCE          string
	SUPABASE_URL            string
	SUPABASE_ANON_KEY       string
	ALLOWED_CORS_HOSTS      []string
}

// optional keys are not reported when missing
var optional = map[string]bool{
	"APP_CONFIG_FILE":         true,
	"HTTP_PORT":               true,
	"LOG_LEVEL":               true,
	"DB_POSTGRESQL_READ1_DSN": true,
	"CACHE_TYPE":              true,
	"CACHE_PASSWORD":          true,
	"CACHE_DB":                true,
	"REDIS_URL":               true,
	"CATALOG_SOURCE":          true,
	"SUPABASE_URL":            true,
	"SUPABASE_ANON_KEY":       true,
	"ALLOWED_CORS_HOSTS":      true,
}

func (ev *EnvironmentVariable) LoadFromEnv() {
	ev.LoadFrom(os.Getenv)
}

// LoadFrom fills the struct using lookup, one key per field name.
func (ev *EnvironmentVariable) LoadFrom(lookup func(string) string) {
	v := reflect.ValueOf(ev).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		envKey := field.Name
		envValue := lookup(envKey)
		if envValue == "" {
			if !optional[envKey] {
				fmt.Printf("Missing SYSENV: %s\n", envKey)
			}
			continue
		}
		switch v.Field(i).Kind() {
		case reflect.String:
			v.Field(i).SetString(envValue)
		case reflect.Slice:
			switch field.Type.Elem().Kind() {
			case reflect.Uint8:
				v.Field(i).SetBytes([]byte(envValue))
			case reflect.String:
				parts := strings.Split(envValue, ",")
				values := make([]string, 0, len(parts))
				for _, p := range parts {
					if p = strings.TrimSpace(p); p != "" {
						values = append(values, p)
					}
				}
				v.Field(i).Set(reflect.ValueOf(values))
			}
		}
	}
}

func (ev *EnvironmentVariable) IsProduction() bool {
	return strings.EqualFold(ev.APP_ENV, "production")
}

// Singleton
var EnvironmentVariables = EnvironmentVariable{}
