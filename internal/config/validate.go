package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrConfiguration is wrapped by every validation failure
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInvalidOption indicates an option outside its allowed values
	ErrInvalidOption = fmt.Errorf("%w: invalid option", ErrConfiguration)

	// ErrIncompatibleOptions indicates options that cannot be combined
	ErrIncompatibleOptions = fmt.Errorf("%w: incompatible options", ErrConfiguration)

	// ErrInvalidPattern indicates a pattern set entry that does not compile
	ErrInvalidPattern = fmt.Errorf("%w: invalid pattern", ErrConfiguration)

	// ErrInvalidTreatAs indicates an empty type or assertion in treat_as
	ErrInvalidTreatAs = fmt.Errorf("%w: invalid treat_as entry", ErrConfiguration)
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateEnums(cfg); err != nil {
		errs = append(errs, err)
	}

	if err := validatePlugins(cfg); err != nil {
		errs = append(errs, err)
	}

	if err := validateTypes(cfg); err != nil {
		errs = append(errs, err)
	}

	if err := validatePatterns(cfg); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateEnums(cfg *Config) error {
	var errs []error

	oneOf := func(key, value string, allowed ...string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%w: %s must be one of %s, got '%s'", ErrInvalidOption, key, strings.Join(allowed, ", "), value))
	}

	oneOf("when_ptr", cfg.WhenPtr, "compare_data", "compare_ptr", "smart")
	oneOf("when_no_prototypes", cfg.WhenNoPrototypes, "ignore", "warn", "error")
	oneOf("treat_externs", cfg.TreatExterns, "include", "exclude")
	oneOf("treat_inlines", cfg.TreatInlines, "include", "exclude")

	if cfg.Verbosity < 0 || cfg.Verbosity > 3 {
		errs = append(errs, fmt.Errorf("%w: verbosity must be between 0 and 3, got %d", ErrInvalidOption, cfg.Verbosity))
	}

	if strings.TrimSpace(cfg.Framework) == "" {
		errs = append(errs, fmt.Errorf("%w: framework is required", ErrInvalidOption))
	}

	if strings.TrimSpace(cfg.MockPath) == "" {
		errs = append(errs, fmt.Errorf("%w: mock_path is required", ErrInvalidOption))
	}

	if !strings.Contains(cfg.OrigHeaderIncludeFmt, "%s") {
		errs = append(errs, fmt.Errorf("%w: orig_header_include_fmt must contain %%s, got '%s'", ErrInvalidOption, cfg.OrigHeaderIncludeFmt))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePlugins(cfg *Config) error {
	var errs []error

	if !cfg.FailOnUnexpectedCalls && !cfg.HasPlugin("ignore") && !cfg.HasPlugin("ignore_stateless") {
		errs = append(errs, fmt.Errorf("%w: the ignore plugin is required to disable fail_on_unexpected_calls", ErrIncompatibleOptions))
	}

	if cfg.HasPlugin("cexception") && cfg.ExcludeSetjmpH {
		errs = append(errs, fmt.Errorf("%w: cexception requires setjmp.h (exclude_setjmp_h is set)", ErrIncompatibleOptions))
	}

	if cfg.HasPlugin("array") && cfg.WhenPtr == "compare_ptr" {
		errs = append(errs, fmt.Errorf("%w: the array plugin cannot be combined with when_ptr: compare_ptr", ErrIncompatibleOptions))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateTypes(cfg *Config) error {
	var errs []error

	for ctype, suffix := range cfg.TreatAs {
		if strings.TrimSpace(ctype) == "" || strings.TrimSpace(suffix) == "" {
			errs = append(errs, fmt.Errorf("%w: %q: %q", ErrInvalidTreatAs, ctype, suffix))
		}
	}

	for ctype, elem := range cfg.TreatAsArray {
		if strings.TrimSpace(ctype) == "" || strings.TrimSpace(elem) == "" {
			errs = append(errs, fmt.Errorf("%w: treat_as_array %q: %q", ErrInvalidTreatAs, ctype, elem))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePatterns(cfg *Config) error {
	var errs []error

	check := func(key string, patterns ...string) {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s entry %q: %v", ErrInvalidPattern, key, p, err))
			}
		}
	}

	check("strippables", cfg.Strippables...)
	check("inline_function_patterns", cfg.InlineFunctionPatterns...)
	check("array_size_name", cfg.ArraySizeName)

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// validationError keeps every violation reachable through errors.Is.
type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	var msgs []string
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error {
	return e.errs
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	// Flatten nested groups so the message stays one list.
	var flat []error
	for _, err := range errs {
		var ve *validationError
		if errors.As(err, &ve) {
			flat = append(flat, ve.errs...)
			continue
		}
		flat = append(flat, err)
	}

	return &validationError{errs: flat}
}
