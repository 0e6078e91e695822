package services

import (
	"context"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllLangs(t *testing.T) {
	db := setupTestDB(t)

	langs, err := NewLangService(db).GetAllLangs(context.Background())
	require.NoError(t, err)
	require.Len(t, langs, 2)
	assert.Equal(t, "en", langs[0].Key)
	assert.Equal(t, "ru", langs[1].Key)
}

func TestResolveLang(t *testing.T) {
	svc := NewLangService(setupTestDB(t))

	tests := []struct {
		code    string
		want    string
		wantErr bool
	}{
		{"en", "en", false},
		{"English", "en", false},
		{"en_UK", "en", false},
		{"rus", "ru", false},
		{"ru_RU", "ru", false},
		{"en_U_", "", true},
		{"%", "", true},
		{"e", "", true},
		{"fr", "", true},
		{"en ru", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			key, err := svc.ResolveLang(context.Background(), tt.code)
			if tt.wantErr {
				requireServiceError(t, err, 400, "Unknown lang '"+tt.code+"'")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestPhrasebookValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPhrasebookService(db)
	user := createUser(t, db, "a@b.io", "pw")
	ctx := context.Background()

	_, err := svc.CreatePhrasebook(ctx, user.ID, nil)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = svc.CreatePhrasebook(ctx, user.ID, &PhrasebookInput{})
	assert.ErrorIs(t, err, ErrNoData)
	_, err = svc.CreatePhrasebook(ctx, user.ID, &PhrasebookInput{Name: ptr("")})
	assert.ErrorIs(t, err, ErrNameRange)
	_, err = svc.CreatePhrasebook(ctx, user.ID, &PhrasebookInput{Name: ptr(strings.Repeat("n", 101))})
	assert.ErrorIs(t, err, ErrNameRange)

	pb, err := svc.CreatePhrasebook(ctx, user.ID, &PhrasebookInput{Name: ptr(strings.Repeat("n", 100))})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdatePhrasebook(ctx, user.ID, "1", &PhrasebookInput{Name: ptr("x")}), ErrBadUUID)
	assert.ErrorIs(t, svc.UpdatePhrasebook(ctx, user.ID, pb.ID, nil), ErrNoData)
	assert.ErrorIs(t, svc.UpdatePhrasebook(ctx, user.ID, pb.ID, &PhrasebookInput{Name: ptr("")}), ErrNameRange)
	assert.ErrorIs(t, svc.UpdatePhrasebook(ctx, user.ID, uuid.NewString(), &PhrasebookInput{Name: ptr("x")}), ErrPhrasebookNotFound)
}

func TestPhrasebookOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPhrasebookService(db)
	owner := createUser(t, db, "owner@b.io", "pw")
	stranger := createUser(t, db, "stranger@b.io", "pw")
	ctx := context.Background()

	pb, err := svc.CreatePhrasebook(ctx, owner.ID, &PhrasebookInput{Name: ptr("travel")})
	require.NoError(t, err)

	_, err = svc.GetPhrasebookByID(ctx, stranger.ID, pb.ID)
	assert.ErrorIs(t, err, ErrPhrasebookNotFound)
	assert.ErrorIs(t, svc.UpdatePhrasebook(ctx, stranger.ID, pb.ID, &PhrasebookInput{Name: ptr("mine")}), ErrPhrasebookNotFound)
	assert.ErrorIs(t, svc.DeletePhrasebook(ctx, stranger.ID, pb.ID), ErrPhrasebookNotFound)

	require.NoError(t, svc.UpdatePhrasebook(ctx, owner.ID, pb.ID, &PhrasebookInput{Name: ptr("holidays")}))
	found, err := svc.GetPhrasebookByID(ctx, owner.ID, strings.ToUpper(pb.ID))
	require.NoError(t, err)
	assert.Equal(t, "holidays", found.Name)

	list, err := svc.GetAllPhrasebooks(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.GetAllPhrasebooks(ctx, stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeletePhrasebookKeepsSharedPhrases(t *testing.T) {
	db := setupTestDB(t)
	books := NewPhrasebookService(db)
	phrases := NewPhraseService(db)
	user := createUser(t, db, "a@b.io", "pw")
	ctx := context.Background()

	first, err := books.CreatePhrasebook(ctx, user.ID, &PhrasebookInput{Name: ptr("first")})
	require.NoError(t, err)
	second, err := books.CreatePhrasebook(ctx, user.ID, &PhrasebookInput{Name: ptr("second")})
	require.NoError(t, err)

	shared, err := phrases.CreatePhrase(ctx, user.ID, first.ID, &PhraseInput{Text1: ptr("yes"), Text2: ptr("da"), Lang1: ptr("en"), Lang2: ptr("ru")})
	require.NoError(t, err)
	own, err := phrases.CreatePhrase(ctx, user.ID, first.ID, &PhraseInput{Text1: ptr("no"), Text2: ptr("net"), Lang1: ptr("en"), Lang2: ptr("ru")})
	require.NoError(t, err)
	require.NoError(t, phrases.CopyPhrase(ctx, user.ID, second.ID, shared.ID))

	list, err := books.GetPhrases(ctx, user.ID, first.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, books.DeletePhrasebook(ctx, user.ID, first.ID))

	_, err = books.GetPhrasebookByID(ctx, user.ID, first.ID)
	assert.ErrorIs(t, err, ErrPhrasebookNotFound)
	_, err = phrases.GetPhraseByID(ctx, own.ID)
	assert.ErrorIs(t, err, ErrPhraseNotFound)
	_, err = phrases.GetPhraseByID(ctx, shared.ID)
	assert.NoError(t, err)

	var links int64
	require.NoError(t, db.Model(&models.PhrasebookPhrase{}).Count(&links).Error)
	assert.Equal(t, int64(1), links)
}
