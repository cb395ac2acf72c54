package catalog

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultExtension is the pointer-file extension used when none is configured.
const DefaultExtension = "ptr"

// Layout templates relative to a category root.
const (
	titleLayout   = "{name}/{name}.{ext}"
	episodeLayout = "{name}/Season {season:02}/{name} S{season:02}E{episode:02}.{ext}"
)

// TargetPath returns the pointer-file path for e relative to the output
// directory. Shows without an episode marker are filed as S01E01.
func (e Entry) TargetPath(ext string) (string, error) {
	root, err := e.Category.Root()
	if err != nil {
		return "", err
	}

	name := SanitizeFilename(e.Title)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyTitle, e.RawTitle)
	}
	if e.Year != 0 {
		name = fmt.Sprintf("%s (%d)", name, e.Year)
	}

	vars := map[string]any{
		"name": name,
		"ext":  strings.TrimPrefix(ext, "."),
	}

	var rel string
	switch e.Category {
	case Movie, Documentary:
		rel = applyTemplate(titleLayout, vars)
	case TVEpisode:
		ep := Episode{Season: 1, Number: 1}
		if e.Episode != nil {
			ep = *e.Episode
		}
		vars["season"] = ep.Season
		vars["episode"] = ep.Number
		rel = applyTemplate(episodeLayout, vars)
	case Replay:
		return "", ErrNotWritable
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownCategory, int(e.Category))
	}
	return filepath.Join(root, filepath.FromSlash(rel)), nil
}

// illegalChars are characters not allowed in filenames on common filesystems.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00]`)

var (
	multiSpace = regexp.MustCompile(`\s+`)
	multiDot   = regexp.MustCompile(`\.{2,}`)
)

// SanitizeFilename removes or replaces characters that are unsafe for filenames.
func SanitizeFilename(name string) string {
	name = illegalChars.ReplaceAllString(name, " ")
	name = multiDot.ReplaceAllString(name, ".")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.Trim(name, " .")
}

// formatPattern matches {name} or {name:02} style placeholders.
var formatPattern = regexp.MustCompile(`\{(\w+)(?::(\d+))?\}`)

// applyTemplate substitutes vars into a layout. {name:02} zero-pads integers.
func applyTemplate(template string, vars map[string]any) string {
	return formatPattern.ReplaceAllStringFunc(template, func(match string) string {
		parts := formatPattern.FindStringSubmatch(match)
		val, ok := vars[parts[1]]
		if !ok {
			return match
		}
		if parts[2] != "" {
			if width, err := strconv.Atoi(parts[2]); err == nil {
				if v, isInt := val.(int); isInt {
					return fmt.Sprintf("%0*d", width, v)
				}
			}
		}
		return fmt.Sprintf("%v", val)
	})
}
