package i18n

import "errors"

var (
	ErrEmptyLanguage       = errors.New("i18n: language cannot be empty")
	ErrInvalidLanguage     = errors.New("i18n: invalid language code")
	ErrUnsupportedLanguage = errors.New("i18n: unsupported language")
	ErrResourceNotFound    = errors.New("i18n: translation resource not found")
	ErrInvalidResource     = errors.New("i18n: invalid translation resource")
)
