package repositories_test

import (
	"sync"
	"testing"

	"gerbang/internal/models"
	"gerbang/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestMemoryUserRepository_CreateAndGet(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()

	user := &models.User{Name: "Jo Smith", Email: "jo@x.com", Age: 30, Password: "hash"}
	assert.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)

	byEmail, err := repo.GetByEmail("jo@x.com")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "jo@x.com", byID.Email)

	_, err = repo.GetByEmail("nobody@x.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMemoryUserRepository_DuplicateEmail(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()

	assert.NoError(t, repo.Create(&models.User{Name: "Jo", Email: "jo@x.com", Password: "hash"}))
	err := repo.Create(&models.User{Name: "Other", Email: "jo@x.com", Password: "hash2"})
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)
}

func TestMemoryUserRepository_ConcurrentSignupRace(t *testing.T) {
	// Many concurrent creates for the same email must yield exactly one
	// success, never duplicate records.
	repo := repositories.NewMemoryUserRepository()

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Create(&models.User{Name: "Jo Smith", Email: "jo@x.com", Password: "hash"})
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)
		}
	}
	assert.Equal(t, 1, successes)
}
