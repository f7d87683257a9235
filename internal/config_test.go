package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_defaults(t *testing.T) {
	req := require.New(t)

	// Given only the required keys
	environ := env.EnvSet{
		"BADGER_FILEPATH": "/tmp/badger",
		"BLUGE_FILEPATH":  "/tmp/bluge",
		"ALLOWED_ORIGINS": "http://localhost:3000, ,http://chat.example",
		"CENSORED_WORDS":  "darn,heck",
	}

	// When loading
	var config Config
	err := env.Unmarshal(environ, &config)

	// Then defaults fill the rest
	req.NoError(err)
	req.Equal("0.0.0.0:3001", config.Address())
	req.Equal(700*time.Millisecond, config.TypingQuietPeriod)
	req.Equal(500, config.RoomHistoryLimit)
	req.Equal(1000, config.PrivateHistoryLimit)
	req.Equal(2000, config.MaxContentLength)
	req.Equal([]string{"http://localhost:3000", "http://chat.example"}, config.Origins())
	req.Equal([]string{"darn", "heck"}, config.Words())
}

func TestConfig_missingRequired(t *testing.T) {
	req := require.New(t)

	var config Config
	err := env.Unmarshal(env.EnvSet{"BADGER_FILEPATH": "/tmp/badger"}, &config)
	req.Error(err)
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("#")
	req.NoError(err)
	req.Equal('#', r)

	_, err = CharacterRune("##")
	req.Error(err)
	_, err = CharacterRune("")
	req.Error(err)
}
