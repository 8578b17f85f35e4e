package errors

import "errors"

var (
	ErrNotFound = errors.New("doctor not found")

	ErrInvalidAvatar = errors.New("avatar must be a PNG, JPEG, GIF or WebP image")

	ErrAvatarTooLarge = errors.New("avatar exceeds the upload limit")
)
