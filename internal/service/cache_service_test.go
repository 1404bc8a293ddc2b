package service

import (
	"context"
	"encoding/json"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/caluny-api/internal/dto"
	"github.com/noah-isme/caluny-api/internal/models"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

type memoryCacheRepo struct {
	values map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.values {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.values, key)
		}
	}
	return nil
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	svc := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	var out string
	hit, err := svc.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestAuthenticateUsesTokenCache(t *testing.T) {
	repo := newMockAccountRepo()
	user := addUser(t, repo, "ada", "pw", true)
	repo.tokens[user.ID] = "good"
	cache := NewCacheService(newMemoryCacheRepo(), NewMetricsService(), time.Minute, nil, true)
	svc := NewAccountService(repo, nil, cache, nil, nil, AccountConfig{})

	for i := 0; i < 3; i++ {
		got, err := svc.Authenticate(context.Background(), "good")
		require.NoError(t, err)
		assert.Equal(t, "ada", got.Username)
	}
	assert.Equal(t, 1, repo.tokenLookup)
}

func TestUniversityListCacheInvalidatedOnCreate(t *testing.T) {
	repo := newMockInstitutionRepo()
	memory := newMemoryCacheRepo()
	cache := NewCacheService(memory, nil, time.Minute, nil, true)
	svc := NewInstitutionService(repo, nil, cache, nil)
	ctx := context.Background()

	_, _, hit, err := svc.ListUniversities(ctx, models.UniversityFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	_, _, hit, err = svc.ListUniversities(ctx, models.UniversityFilter{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.CreateUniversity(ctx, dto.CreateUniversityRequest{Name: "UGR"})
	require.NoError(t, err)
	assert.Empty(t, memory.values)

	items, _, _, err := svc.ListUniversities(ctx, models.UniversityFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, repo.listCalls)
}

func TestUniversityListKeysMatchPattern(t *testing.T) {
	key := UniversityListKey("Granada", 2, 20)
	assert.Equal(t, "catalogue:universities:granada:2:20", key)

	ok, err := path.Match(UniversityListPattern(), key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = path.Match(UniversityListPattern(), TokenKey("abc"))
	assert.False(t, ok)
}
