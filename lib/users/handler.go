package usershandler

import (
	"math/rand"
	"strings"

	log "github.com/sirupsen/logrus"

	"interview-eval-backend/db"
	usersstore "interview-eval-backend/lib/users/store"
	dbmodels "interview-eval-backend/models/db"
)

const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz1234567890"
const initialPasswordLen = 16

type Provider interface {
	// EnsureAccount - идемпотентное создание учетной записи интервьюера по почте.
	EnsureAccount(email, name string) (rec *dbmodels.User, err error)
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider(usersstore.NewInstance(db.DB))
}

func NewProvider(store usersstore.Provider) Provider {
	return &impl{
		store: store,
	}
}

type impl struct {
	store usersstore.Provider
}

func (i impl) EnsureAccount(email, name string) (*dbmodels.User, error) {
	email = strings.TrimSpace(email)
	user, err := i.store.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	rec := dbmodels.User{
		Email:    email,
		Name:     strings.TrimSpace(name),
		Password: generatePassword(),
		IsActive: true,
	}
	id, err := i.store.Create(rec)
	if err != nil {
		// параллельный запрос мог создать запись первым
		existing, findErr := i.store.FindByEmail(email)
		if findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	rec.ID = id
	log.WithField("email", email).Info("создана учетная запись интервьюера")
	return &rec, nil
}

func generatePassword() string {
	b := make([]byte, initialPasswordLen)
	for idx := range b {
		b[idx] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}
