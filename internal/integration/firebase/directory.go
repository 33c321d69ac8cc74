package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"github.com/metrix-hardline/subscription-service/internal/domain"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

// Directory реализует каталог идентичности поверх Firebase Auth
type Directory struct {
	client *auth.Client
	log    *logger.Logger
}

// NewDirectory создает новый каталог идентичности
func NewDirectory(ctx context.Context, app *firebase.App, log *logger.Logger) (*Directory, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth client: %w", err)
	}

	return &Directory{
		client: client,
		log:    log,
	}, nil
}

// GetPrincipalByEmail возвращает принципала по email
func (d *Directory) GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error) {
	user, err := d.client.GetUserByEmail(ctx, email)
	if auth.IsUserNotFound(err) {
		return domain.Principal{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Principal{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return domain.Principal{ID: user.UID, Email: user.Email}, nil
}

// CreatePrincipal создает нового принципала с указанным email
func (d *Directory) CreatePrincipal(ctx context.Context, email string) (domain.Principal, error) {
	user, err := d.client.CreateUser(ctx, (&auth.UserToCreate{}).Email(email))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("failed to create user: %w", err)
	}

	d.log.Infow("Principal created", "uid", user.UID)
	return domain.Principal{ID: user.UID, Email: user.Email}, nil
}

// GenerateSetupLink выпускает одноразовую ссылку установки пароля,
// привязанную к return URL
func (d *Directory) GenerateSetupLink(ctx context.Context, email, returnURL string) (string, error) {
	settings := &auth.ActionCodeSettings{URL: returnURL}

	link, err := d.client.PasswordResetLinkWithSettings(ctx, email, settings)
	if err != nil {
		return "", fmt.Errorf("failed to generate password reset link: %w", err)
	}

	return link, nil
}

// VerifyIDToken проверяет bearer-токен и возвращает ID принципала
func (d *Directory) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := d.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("invalid ID token: %w", err)
	}
	return token.UID, nil
}
