package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewApp инициализирует приложение Firebase из файла сервисного аккаунта.
// Возвращаемый App — process-wide handle: создается один раз при старте
// и инжектится в обработчики.
func NewApp(ctx context.Context, credentialsFile, projectID string) (*firebase.App, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("firebase credentials file is not configured")
	}

	conf := &firebase.Config{ProjectID: projectID}
	opt := option.WithCredentialsFile(credentialsFile)

	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	return app, nil
}
