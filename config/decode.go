package config

import (
	"github.com/mitchellh/mapstructure"
)

// decode decodes raw configuration values into a config struct.
//
// Strict decoding rejects unknown keys.
func decode(input interface{}, output interface{}, strict bool) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      strict,
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
