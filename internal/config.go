package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=3001"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	PongTimeout          time.Duration `env:"PONG_TIMEOUT,default=60s"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS"`

	BufferSize      int           `env:"BUFFER_SIZE,default=1024"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=5s"`

	LowCapacityThreshold int `env:"LOW_CAPACITY_THRESHOLD,default=80"`

	TypingQuietPeriod   time.Duration `env:"TYPING_QUIET_PERIOD,default=700ms"`
	RoomHistoryLimit    int           `env:"ROOM_HISTORY_LIMIT,default=500"`
	PrivateHistoryLimit int           `env:"PRIVATE_HISTORY_LIMIT,default=1000"`
	MaxContentLength    int           `env:"MAX_CONTENT_LENGTH,default=2000"`

	CensoredWords   string `env:"CENSORED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Origins splits ALLOWED_ORIGINS on commas. Empty means any origin.
func (c Config) Origins() []string {
	return splitList(c.AllowedOrigins)
}

func (c Config) Words() []string {
	return splitList(c.CensoredWords)
}

func splitList(raw string) []string {
	var values []string
	for _, value := range strings.Split(raw, ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	return values
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
