package services

import (
	"fmt"
	"time"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	taskCacheTTL = 30 * time.Minute
	listCacheTTL = 5 * time.Minute
)

// CachedTaskService is a read-through cache over TaskService. Results
// are identity-scoped, so every key carries the caller's id and role;
// any write flushes the whole task keyspace.
type CachedTaskService struct {
	tasks TaskService
	cache *cache.RedisCache
}

func NewCachedTaskService(tasks TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{tasks: tasks, cache: cacheInstance}
}

func listCacheKey(caller Identity, filter TaskFilter) string {
	return fmt.Sprintf("tasks:list:%s:%s:%s|%s|%s|%s|%d|%d",
		caller.Role, caller.UserID,
		filter.Search, filter.Status, filter.Priority, filter.AssignedUser,
		filter.Page, filter.PageSize)
}

func taskCacheKey(caller Identity, id uuid.UUID) string {
	return fmt.Sprintf("tasks:item:%s:%s:%s", caller.Role, caller.UserID, id)
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, caller Identity, filter TaskFilter) (*TaskPage, error) {
	key := listCacheKey(caller, filter)

	var cached TaskPage
	if err := s.cache.Get(key, &cached); err == nil {
		return &cached, nil
	}

	page, err := s.tasks.ListTasks(db, caller, filter)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, page, listCacheTTL)

	return page, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, caller Identity, id uuid.UUID) (*models.Task, error) {
	key := taskCacheKey(caller, id)

	var cached models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		return &cached, nil
	}

	task, err := s.tasks.GetTaskByID(db, caller, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, task, taskCacheTTL)

	return task, nil
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, caller Identity, input TaskInput) (*models.Task, error) {
	task, err := s.tasks.CreateTask(db, caller, input)
	if err != nil {
		return nil, err
	}

	s.invalidate()

	return task, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, caller Identity, id uuid.UUID, update TaskUpdate) (*models.Task, error) {
	task, err := s.tasks.UpdateTask(db, caller, id, update)
	if err != nil {
		return nil, err
	}

	s.invalidate()

	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, caller Identity, id uuid.UUID) error {
	if err := s.tasks.DeleteTask(db, caller, id); err != nil {
		return err
	}

	s.invalidate()

	return nil
}

func (s *CachedTaskService) invalidate() {
	s.cache.DeletePattern("tasks:*")
}
