// Чтение переменных окружения с приведением типов.
package config

import (
	"net/url"
	"os"
	"strconv"
)

// Exist сообщает, задана ли переменная окружения key.
func Exist(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

// GetEnv возвращает строковое значение переменной окружения.
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetIntEnv возвращает числовое значение переменной окружения.
// При ошибке разбора возвращается 0.
func GetIntEnv(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

// GetBoolEnv возвращает логическое значение переменной окружения.
// При ошибке разбора возвращается false.
func GetBoolEnv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return v
}

// GetURLEnv разбирает значение переменной окружения как URL.
// Возвращает nil, если значение не задано или не разбирается.
func GetURLEnv(key string) *url.URL {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	u, err := url.Parse(val)
	if err != nil {
		return nil
	}
	return u
}
