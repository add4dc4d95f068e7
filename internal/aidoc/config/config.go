// Управление конфигурацией приложения из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки из переменных окружения.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Валидация обязательных переменных.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений (passwords) в логах.
//   - Значения по умолчанию для необязательных параметров.
package config

import (
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strings"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_URL"`

	// Внешний сервис конвертации PDF в документ
	ConvertServiceURLRaw string `env:"CONVERT_SERVICE_URL"`
	ConvertServiceURL    *url.URL

	MinioEndpoint   string `env:"MINIO_ENDPOINT"`
	MinioAccessKey  string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey  string `env:"MINIO_SECRET_KEY"`
	MinioBucketName string `env:"MINIO_BUCKET_NAME"`
	MinioSecure     bool   `env:"MINIO_SECURE"`

	// Локальное хранилище вместо minio, если путь задан
	LocalStoragePath string `env:"LOCAL_STORAGE_PATH"`

	// Срок хранения неприкрепленных файлов в днях
	StaleAssetsTTL int `env:"STALE_ASSETS_TTL_DAYS"`

	SwaggerEnable bool `env:"SWAGGER"`
}

// ReadConfig загружает конфигурацию приложения из переменных окружения и выполняет валидацию. Возвращает структуру Config с загруженными параметрами. Если CONVERT_SERVICE_URL не задан или некорректен, приложение завершает работу с ошибкой. Секретные значения маскируются в логах, для необязательных параметров подставляются значения по умолчанию.
func ReadConfig() *Config {
	config := &Config{}

	envConfig("env", config)

	// Check required envs
	if config.ConvertServiceURLRaw == "" {
		slog.Error("CONVERT_SERVICE_URL is required")
		os.Exit(1)
	}
	config.ConvertServiceURL = GetURLEnv("CONVERT_SERVICE_URL")
	if config.ConvertServiceURL == nil {
		slog.Error("CONVERT_SERVICE_URL incorrect", "value", config.ConvertServiceURLRaw)
		os.Exit(1)
	}

	if config.StaleAssetsTTL <= 0 {
		config.StaleAssetsTTL = 7
	}

	return config
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if !Exist(fEnvTag) {
			continue
		}

		logValue := GetEnv(fEnvTag)
		if logValue == "" {
			continue
		}

		// Secure passwords in log
		if strings.Contains(strings.ToLower(fName), "pass") || strings.Contains(strings.ToLower(fName), "secret") || strings.Contains(strings.ToLower(fName), "token") {
			pass := strings.Split(GetEnv(fEnvTag), "")
			logValue = pass[0]
			for i := 1; i < len(pass)-1; i++ {
				logValue += "*"
			}
			logValue += pass[len(pass)-1]

		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(GetEnv(fEnvTag))
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		}
	}
}
