package render

import (
	"context"
	"errors"
	"testing"
)

func TestConvertUnsupportedFormat(t *testing.T) {
	if _, err := Convert(context.Background(), []byte("<svg/>"), Format("gif"), 1); err == nil {
		t.Error("Convert(gif) should fail")
	}
}

func TestConvertWithoutConverter(t *testing.T) {
	t.Setenv("PATH", "")
	if Available() {
		t.Skip("rsvg-convert still resolvable")
	}
	_, err := Convert(context.Background(), []byte("<svg/>"), PNG, 2)
	if !errors.Is(err, ErrConverterMissing) {
		t.Errorf("Convert() error = %v, want ErrConverterMissing", err)
	}
}
