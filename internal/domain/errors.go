package domain

import "errors"

var (
	// ErrNotFound принципал или запись пользователя не найдены
	ErrNotFound = errors.New("not found")

	// ErrSubscriptionInactive подписка принципала неактивна
	ErrSubscriptionInactive = errors.New("subscription inactive")

	// ErrInvalidData данные запроса некорректны
	ErrInvalidData = errors.New("invalid data")
)
