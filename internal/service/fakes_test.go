package service_test

import (
	"context"
	"fmt"

	"github.com/metrix-hardline/subscription-service/internal/domain"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.ERROR)
}

// fakeDirectory in-memory каталог идентичности
type fakeDirectory struct {
	principals  map[string]domain.Principal // email -> principal
	created     []string
	linksIssued int
	lookupErr   error
	linkErr     error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{principals: make(map[string]domain.Principal)}
}

func (d *fakeDirectory) GetPrincipalByEmail(_ context.Context, email string) (domain.Principal, error) {
	if d.lookupErr != nil {
		return domain.Principal{}, d.lookupErr
	}
	p, ok := d.principals[email]
	if !ok {
		return domain.Principal{}, domain.ErrNotFound
	}
	return p, nil
}

func (d *fakeDirectory) CreatePrincipal(_ context.Context, email string) (domain.Principal, error) {
	p := domain.Principal{ID: fmt.Sprintf("uid-%d", len(d.principals)+1), Email: email}
	d.principals[email] = p
	d.created = append(d.created, email)
	return p, nil
}

func (d *fakeDirectory) GenerateSetupLink(_ context.Context, email, returnURL string) (string, error) {
	if d.linkErr != nil {
		return "", d.linkErr
	}
	d.linksIssued++
	return "https://auth.example.com/reset?continue=" + returnURL + "&email=" + email, nil
}

// fakeStore in-memory документное хранилище записей
type fakeStore struct {
	records   map[string]domain.RecordPatch // principalID -> merged fields
	tokens    map[string][]string
	upserts   int
	getErr    error
	upsertErr error
	tokensErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[string]domain.RecordPatch),
		tokens:  make(map[string][]string),
	}
}

func (s *fakeStore) MergeUpsert(_ context.Context, principalID string, patch domain.RecordPatch) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	if len(patch) == 0 {
		return nil
	}
	merged, ok := s.records[principalID]
	if !ok {
		merged = make(domain.RecordPatch)
		s.records[principalID] = merged
	}
	for k, v := range patch {
		merged[k] = v
	}
	s.upserts++
	return nil
}

func (s *fakeStore) GetRecord(_ context.Context, principalID string) (domain.UserRecord, error) {
	if s.getErr != nil {
		return domain.UserRecord{}, s.getErr
	}
	fields, ok := s.records[principalID]
	if !ok {
		return domain.UserRecord{}, domain.ErrNotFound
	}

	record := domain.UserRecord{PrincipalID: principalID}
	if v, ok := fields[domain.FieldEmail].(string); ok {
		record.Email = v
	}
	if v, ok := fields[domain.FieldSubscriptionActive].(bool); ok {
		record.SubscriptionActive = v
	}
	if v, ok := fields[domain.FieldSubscriptionStatus].(string); ok {
		record.SubscriptionStatus = domain.SubscriptionStatus(v)
	}
	return record, nil
}

func (s *fakeStore) FindBySubscriptionID(_ context.Context, subscriptionID string) (string, error) {
	return s.findBy(domain.FieldSubscriptionID, subscriptionID)
}

func (s *fakeStore) FindByCustomerID(_ context.Context, customerID string) (string, error) {
	return s.findBy(domain.FieldBillingCustomerID, customerID)
}

func (s *fakeStore) findBy(field, value string) (string, error) {
	for id, fields := range s.records {
		if fields[field] == value {
			return id, nil
		}
	}
	return "", domain.ErrNotFound
}

func (s *fakeStore) DeviceTokens(_ context.Context, principalID string) ([]string, error) {
	if s.tokensErr != nil {
		return nil, s.tokensErr
	}
	return s.tokens[principalID], nil
}

// fakeSubscriptions источник состояния подписок
type fakeSubscriptions struct {
	states map[string]domain.SubscriptionState
	err    error
	calls  int
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{states: make(map[string]domain.SubscriptionState)}
}

func (f *fakeSubscriptions) GetSubscription(_ context.Context, subscriptionID string) (domain.SubscriptionState, error) {
	f.calls++
	if f.err != nil {
		return domain.SubscriptionState{}, f.err
	}
	state, ok := f.states[subscriptionID]
	if !ok {
		return domain.SubscriptionState{}, fmt.Errorf("no such subscription: %s", subscriptionID)
	}
	return state, nil
}

type sentEmail struct {
	to      string
	subject string
	html    string
}

// fakeEmail записывает отправленные письма
type fakeEmail struct {
	sent []sentEmail
	err  error
}

func (f *fakeEmail) Send(_ context.Context, to, subject, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, html: html})
	return nil
}

// fakePush записывает multicast-отправки
type fakePush struct {
	tokens      []string
	clickAction string
	sent        int
	failed      int
	err         error
	calls       int
}

func (f *fakePush) SendMulticast(_ context.Context, tokens []string, _, _, clickAction string) (int, int, error) {
	f.calls++
	f.tokens = tokens
	f.clickAction = clickAction
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.sent, f.failed, nil
}
