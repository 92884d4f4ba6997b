// Package services is the query façade over the repo store. Callers deal in
// repo snapshots and field-sets; target construction, filters and the
// re-absorb of written values happen here.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/reposhelf/internal/common"
	"github.com/dmitrijs2005/reposhelf/internal/models"
	"github.com/dmitrijs2005/reposhelf/internal/purge"
	"github.com/dmitrijs2005/reposhelf/internal/repos"
)

// AppPurger removes a repo's apps and apks on demand.
type AppPurger interface {
	Purge(ctx context.Context, repoID int64) (purge.Result, error)
}

type RepoService interface {
	FindByID(ctx context.Context, id int64) (*models.Repo, error)
	FindByAddress(ctx context.Context, address string) (*models.Repo, error)
	All(ctx context.Context) ([]models.Repo, error)
	Insert(ctx context.Context, values models.Values) (int64, error)
	Update(ctx context.Context, repo *models.Repo, values models.Values) (int64, error)
	Remove(ctx context.Context, id int64) (int64, error)
	PurgeApps(ctx context.Context, repoID int64) (purge.Result, error)
	Watch(ctx context.Context, target repos.Target) (*repos.Cursor, error)
}

type repoService struct {
	store  *repos.Store
	purger AppPurger
}

func NewRepoService(store *repos.Store, purger AppPurger) RepoService {
	return &repoService{store: store, purger: purger}
}

func (s *repoService) FindByID(ctx context.Context, id int64) (*models.Repo, error) {
	return s.first(ctx, repos.Single(id), repos.Filter{})
}

// FindByAddress returns the lowest-id repo with exactly this address.
func (s *repoService) FindByAddress(ctx context.Context, address string) (*models.Repo, error) {
	return s.first(ctx, repos.Collection(), repos.Filter{
		Where: models.ColAddress + " = ?",
		Args:  []any{address},
	})
}

func (s *repoService) first(ctx context.Context, target repos.Target, filter repos.Filter) (*models.Repo, error) {
	c, err := s.store.Query(ctx, target, repos.Query{Filter: filter})
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if len(c.Repos) == 0 {
		return nil, fmt.Errorf("repo %s: %w", target, common.ErrorNotFound)
	}
	r := c.Repos[0]
	return &r, nil
}

// All returns every repo ordered by id.
func (s *repoService) All(ctx context.Context) ([]models.Repo, error) {
	c, err := s.store.Query(ctx, repos.Collection(), repos.Query{})
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Repos, nil
}

func (s *repoService) Insert(ctx context.Context, values models.Values) (int64, error) {
	return s.store.Insert(ctx, values)
}

// Update writes values to repo's row and, on success, merges the written
// field-set (derived fields included) into repo. Nothing else about repo is
// refreshed.
func (s *repoService) Update(ctx context.Context, repo *models.Repo, values models.Values) (int64, error) {
	written, n, err := s.store.UpdateValues(ctx, repos.Single(repo.ID), values, repos.Filter{})
	if err != nil {
		return 0, err
	}
	repo.SetValues(written)
	return n, nil
}

// Remove deletes one repo. Its apps are purged in the background by the
// store.
func (s *repoService) Remove(ctx context.Context, id int64) (int64, error) {
	return s.store.Delete(ctx, repos.Single(id), repos.Filter{})
}

// PurgeApps removes the repo's apks and the apps left without any, and
// waits for it. The repo row itself is kept.
func (s *repoService) PurgeApps(ctx context.Context, repoID int64) (purge.Result, error) {
	return s.purger.Purge(ctx, repoID)
}

// Watch subscribes to changes of target. Close the cursor to stop.
func (s *repoService) Watch(ctx context.Context, target repos.Target) (*repos.Cursor, error) {
	return s.store.Query(ctx, target, repos.Query{Projection: []string{models.ColID}})
}
