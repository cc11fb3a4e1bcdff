package validate

// PageSize checks 1 <= n <= limit.
func PageSize(field string, n, limit int) error {
	if n < 1 || n > limit {
		return Fieldf(field, "must be between 1 and %d, got %d", limit, n)
	}
	return nil
}

// Required rejects an empty string argument.
func Required(field, v string) error {
	if v == "" {
		return Field(field, ErrMissingArgument)
	}
	return nil
}
