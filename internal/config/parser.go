package config

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/example/shineymark/internal/export"
	"github.com/example/shineymark/internal/textfont"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			continue
		}

		// Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch section {
		case "":
			err = setRootField(cfg, key, value)
		case "style":
			err = setStyleField(&cfg.Style, key, value)
		case "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case "export":
			err = setExportField(&cfg.Export, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "save_dir":
		cfg.SaveDir = value
	case "output_format":
		f, err := export.ParseFormat(value)
		if err != nil {
			return err
		}
		cfg.OutputFormat = f
	}
	return nil
}

func setStyleField(s *Style, key, value string) error {
	var err error
	switch key {
	case "line_color":
		s.LineColor, err = ParseColor(value)
	case "fill_color":
		s.FillColor, err = ParseColor(value)
	case "highlight_color":
		s.HighlightColor, err = ParseColor(value)
	case "thickness":
		s.Thickness, err = parsePositive(key, value)
	case "counter_start":
		s.CounterStart, err = parsePositive(key, value)
	case "font":
		s.Font.Family, err = textfont.ParseFamily(value)
	case "font_size":
		s.Font.Size, err = strconv.ParseFloat(value, 64)
		if err == nil && s.Font.Size <= 0 {
			err = fmt.Errorf("font_size must be positive")
		}
	case "font_bold":
		s.Font.Bold, err = parseBool(key, value)
	case "font_italic":
		s.Font.Italic, err = parseBool(key, value)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := parseBool(key, value)
	if err != nil {
		return err
	}
	switch key {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	case "failure":
		n.Failure = b
	}
	return nil
}

func setExportField(e *Export, key, value string) error {
	var err error
	switch key {
	case "shadow":
		e.Shadow, err = parseBool(key, value)
	case "shadow_radius":
		e.ShadowRadius, err = strconv.Atoi(value)
		if err == nil && e.ShadowRadius < 0 {
			err = fmt.Errorf("shadow_radius must not be negative")
		}
	case "shadow_offset":
		e.ShadowOffset, err = ParsePoint(value)
	case "shadow_opacity":
		e.ShadowOpacity, err = strconv.ParseFloat(value, 64)
		if err == nil && (e.ShadowOpacity < 0 || e.ShadowOpacity > 1) {
			err = fmt.Errorf("shadow_opacity must be between 0 and 1")
		}
	}
	return err
}

// ParsePoint parses "x,y".
func ParsePoint(s string) (image.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return image.Point{}, fmt.Errorf("invalid point %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid point %q", s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid point %q", s)
	}
	return image.Pt(x, y), nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	return b, nil
}

func parsePositive(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1", key)
	}
	return n, nil
}
