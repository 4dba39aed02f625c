package render

import (
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"NYCU-SDC/questionnaire-backend/internal/form/shared"
	"fmt"
	"regexp"
	"slices"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

const DefaultPatternCacheSize = 256

// PatternCache memoizes compiled validation patterns. It is safe for concurrent use. Patterns
// that fail to compile are remembered too, and reported once.
type PatternCache struct {
	logger *zap.Logger
	size   int

	mu       sync.RWMutex
	compiled map[string]*regexp.Regexp
}

func NewPatternCache(logger *zap.Logger, size int) *PatternCache {
	if size <= 0 {
		size = DefaultPatternCacheSize
	}
	return &PatternCache{
		logger:   logger,
		size:     size,
		compiled: make(map[string]*regexp.Regexp),
	}
}

// Get returns the compiled pattern, or false if pattern is not a valid regular expression.
func (c *PatternCache) Get(pattern string) (*regexp.Regexp, bool) {
	c.mu.RLock()
	re, ok := c.compiled[pattern]
	c.mu.RUnlock()
	if ok {
		return re, re != nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		c.logger.Warn("Skipping invalid validation pattern", zap.String("pattern", pattern), zap.Error(err))
		re = nil
	}

	c.mu.Lock()
	if len(c.compiled) >= c.size {
		clear(c.compiled)
	}
	c.compiled[pattern] = re
	c.mu.Unlock()

	return re, re != nil
}

func (c *PatternCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.compiled)
}

// ValidateField checks value against the rules of f and returns the message to show, or an
// empty string when the value is acceptable. A non-required field left empty is always
// acceptable. A non-empty value must have the shape of its field type and, for fields with
// options, only hold listed options. Fields of an unknown type have no input to fill in and are
// never rejected. patterns may be nil, in which case patterns are compiled on every call.
func ValidateField(f field.Field, value shared.Value, patterns *PatternCache) string {
	if !f.Type.Known() {
		return ""
	}

	if value.IsEmpty() {
		if f.Required {
			return fmt.Sprintf("%s é obrigatório", f.Name())
		}
		return ""
	}

	if value.Kind() != expectedKind(f.Type) {
		return fmt.Sprintf("%s está em formato inválido", f.Name())
	}

	if field.HasOptions(f.Type) {
		if !onlyOptions(f.Options, value) {
			return fmt.Sprintf("%s contém uma opção inválida", f.Name())
		}
		return ""
	}

	text, _ := value.AsString()
	if f.Validation == nil {
		return ""
	}
	rules := f.Validation

	if rules.MinLength != nil || rules.MaxLength != nil {
		length := utf8.RuneCountInString(norm.NFC.String(text))
		if rules.MinLength != nil && length < *rules.MinLength {
			return fmt.Sprintf("%s deve ter pelo menos %d caracteres", f.Name(), *rules.MinLength)
		}
		if rules.MaxLength != nil && length > *rules.MaxLength {
			return fmt.Sprintf("%s deve ter no máximo %d caracteres", f.Name(), *rules.MaxLength)
		}
	}

	if rules.Pattern != "" {
		re, ok := compile(rules.Pattern, patterns)
		if ok && !re.MatchString(text) {
			return fmt.Sprintf("%s está em formato inválido", f.Name())
		}
	}

	return ""
}

// Validate runs ValidateField over every field and returns the messages keyed by field id.
// The result is empty when all answers are acceptable.
func Validate(fields []field.Field, answers shared.AnswerMap, patterns *PatternCache) map[string]string {
	errs := make(map[string]string)
	for _, f := range fields {
		if message := ValidateField(f, answers.Get(f.ID), patterns); message != "" {
			errs[f.ID] = message
		}
	}
	return errs
}

// expectedKind is the only value kind a respondent can give to a field of type t.
func expectedKind(t field.Type) shared.Kind {
	if t == field.TypeMultiSelect {
		return shared.KindList
	}
	return shared.KindString
}

func onlyOptions(options []string, value shared.Value) bool {
	if s, ok := value.AsString(); ok {
		return slices.Contains(options, s)
	}
	list, _ := value.AsList()
	for _, item := range list {
		if !slices.Contains(options, item) {
			return false
		}
	}
	return true
}

func compile(pattern string, patterns *PatternCache) (*regexp.Regexp, bool) {
	if patterns != nil {
		return patterns.Get(pattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false
	}
	return re, true
}
