package reportportal

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/rpreporter/packages/http"
	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"go.uber.org/zap"
)

// StartNested starts an item under the item held by level.Parent() and stores
// the returned id at level. Only feature, scenario and step levels are nested;
// the root item is started with StartRootItem.
func (s *Service) StartNested(ctx context.Context, level session.Level, name, description string, itemType ItemType, tags []string) (*http.Response, error) {
	if level < session.LevelFeature {
		return nil, fmt.Errorf("cannot start %s as a nested item", level)
	}
	parentID := s.state.ID(level.Parent())
	if parentID == session.EmptyID {
		return nil, fmt.Errorf("starting %s %q: no %s is running", level, name, level.Parent())
	}

	resp, err := s.StartChildItem(ctx, parentID, description, name, itemType, tags)
	if resp == nil {
		return nil, err
	}

	id, decodeErr := decodeID(resp)
	if decodeErr != nil {
		return resp, fmt.Errorf("starting %s: %w", level, decodeErr)
	}
	s.state.Set(level, id)
	s.logger.Debug("item started",
		zap.String("level", level.String()),
		zap.String("item_id", id),
		zap.String("parent_id", parentID))
	return resp, err
}

// FinishNested finishes the item held at level and resets it, whatever the
// backend answers.
func (s *Service) FinishNested(ctx context.Context, level session.Level, status Status, description string) (*http.Response, error) {
	if level < session.LevelFeature {
		return nil, fmt.Errorf("cannot finish %s as a nested item", level)
	}
	itemID := s.state.ID(level)
	if itemID == session.EmptyID {
		return nil, fmt.Errorf("finishing %s: not running", level)
	}

	resp, err := s.FinishItem(ctx, itemID, status, description)
	s.state.Reset(level)
	return resp, err
}

func (s *Service) StartFeature(ctx context.Context, name, description string, itemType ItemType, tags []string) (*http.Response, error) {
	return s.StartNested(ctx, session.LevelFeature, name, description, itemType, tags)
}

func (s *Service) StartScenario(ctx context.Context, name, description string, tags []string) (*http.Response, error) {
	return s.StartNested(ctx, session.LevelScenario, name, description, ItemScenario, tags)
}

func (s *Service) StartStep(ctx context.Context, name, description string, tags []string) (*http.Response, error) {
	return s.StartNested(ctx, session.LevelStep, name, description, ItemStep, tags)
}

func (s *Service) FinishFeature(ctx context.Context, status Status, description string) (*http.Response, error) {
	return s.FinishNested(ctx, session.LevelFeature, status, description)
}

func (s *Service) FinishScenario(ctx context.Context, status Status, description string) (*http.Response, error) {
	return s.FinishNested(ctx, session.LevelScenario, status, description)
}

func (s *Service) FinishStep(ctx context.Context, status Status, description string) (*http.Response, error) {
	return s.FinishNested(ctx, session.LevelStep, status, description)
}
