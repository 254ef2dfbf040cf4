package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/segmentio/kafka-go"
)

// DecodeHooks are applied, in order, when decoding into Config.
var DecodeHooks = []mapstructure.DecodeHookFunc{
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
	RequiredAcksHookFunc(),
}

// RequiredAcksHookFunc decodes "all", "one", "none" or an integer into kafka.RequiredAcks.
func RequiredAcksHookFunc() mapstructure.DecodeHookFuncType {
	target := reflect.TypeOf(kafka.RequiredAcks(0))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != target || from.Kind() != reflect.String {
			return data, nil
		}
		return parseRequiredAcks(data.(string))
	}
}

func parseRequiredAcks(s string) (kafka.RequiredAcks, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "-1":
		return kafka.RequireAll, nil
	case "one", "1":
		return kafka.RequireOne, nil
	case "none", "0":
		return kafka.RequireNone, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return 0, fmt.Errorf("unsupported requiredAcks %d", n)
	}
	return 0, fmt.Errorf("unsupported requiredAcks %q", s)
}
