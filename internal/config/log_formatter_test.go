package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func TestNbFormatterPlainOutput(t *testing.T) {
	t.Parallel()

	entry := &log.Entry{
		Logger:  log.New(),
		Level:   log.WarnLevel,
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Message: "slow\ndown",
		Data: log.Fields{
			"object":  "Engine",
			"chat_id": int64(-100),
			"error":   errors.New("boom"),
		},
	}

	out, err := (&NbFormatter{DisableColors: true}).Format(entry)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	line := string(out)
	want := `level=WARN ts=2025-01-02 03:04:05.000 object=Engine chat_id=-100 error="boom" msg="slow\ndown"` + "\n"
	if line != want {
		t.Fatalf("unexpected line:\n got %q\nwant %q", line, want)
	}
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected single line output")
	}
}
