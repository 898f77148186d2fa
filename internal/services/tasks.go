package services

import (
	"errors"
	"strings"
	"time"

	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

// TaskFilter narrows the task list. Zero values apply no restriction.
type TaskFilter struct {
	Status   string // "all", "completed" or "active"; anything else means all
	Search   string // case-insensitive substring match on text
	Priority string // exact priority match
}

// CreateTaskInput carries the raw create payload. Priority and DueDate are
// validated here so the handler stays a thin translation layer.
type CreateTaskInput struct {
	Text      string
	Priority  string // empty means medium
	DueDate   string // empty means no due date, otherwise YYYY-MM-DD
	Completed bool
}

// UpdateTaskInput distinguishes omitted fields (nil) from supplied ones.
// A non-nil empty DueDate clears the due date.
type UpdateTaskInput struct {
	Text      *string
	Completed *bool
	Priority  *string
	DueDate   *string
}

func (in UpdateTaskInput) Empty() bool {
	return in.Text == nil && in.Completed == nil && in.Priority == nil && in.DueDate == nil
}

// BulkUpdateInput is the subset of fields a bulk update may change.
type BulkUpdateInput struct {
	Completed *bool
	Priority  *string
}

type PriorityBreakdown struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
}

type TaskStats struct {
	Total      int64             `json:"total"`
	Completed  int64             `json:"completed"`
	Pending    int64             `json:"pending"`
	Overdue    int64             `json:"overdue"`
	ByPriority PriorityBreakdown `json:"by_priority"`
}

type TaskService interface {
	ListTasks(db *gorm.DB, filter TaskFilter) ([]models.Task, error)
	CreateTask(db *gorm.DB, input CreateTaskInput) (models.Task, error)
	GetTaskByID(db *gorm.DB, id uint) (models.Task, error)
	UpdateTask(db *gorm.DB, id uint, input UpdateTaskInput) (models.Task, error)
	DeleteTask(db *gorm.DB, id uint) error
	GetStats(db *gorm.DB) (TaskStats, error)
	BulkUpdateTasks(db *gorm.DB, ids []uint, updates BulkUpdateInput) ([]models.Task, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, filter TaskFilter) ([]models.Task, error) {
	query := db.Model(&models.Task{})

	switch filter.Status {
	case "completed":
		query = query.Where("completed = ?", true)
	case "active":
		query = query.Where("completed = ?", false)
	}

	if filter.Search != "" {
		query = query.Where("LOWER(text) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	tasks := []models.Task{}
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, input CreateTaskInput) (models.Task, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return models.Task{}, newValidationError("Task text is required")
	}
	if len(text) > models.MaxTextLength {
		return models.Task{}, newValidationError("Task text must be at most %d characters", models.MaxTextLength)
	}

	priority := models.PriorityMedium
	if input.Priority != "" {
		priority = models.Priority(input.Priority)
		if !priority.Valid() {
			return models.Task{}, newValidationError("Invalid priority. Must be low, medium, or high")
		}
	}

	var dueDate *models.Date
	if input.DueDate != "" {
		parsed, err := models.ParseDate(input.DueDate)
		if err != nil {
			return models.Task{}, newValidationError("Invalid due date format. Use YYYY-MM-DD")
		}
		dueDate = &parsed
	}

	now := time.Now().UTC()
	task := models.Task{
		Text:      text,
		Completed: input.Completed,
		Priority:  priority,
		DueDate:   dueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&task).Error
	})
	if err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, id uint) (models.Task, error) {
	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, id uint, input UpdateTaskInput) (models.Task, error) {
	if input.Empty() {
		return models.Task{}, newValidationError("No data provided")
	}

	var text string
	if input.Text != nil {
		text = strings.TrimSpace(*input.Text)
		if text == "" {
			return models.Task{}, newValidationError("Task text cannot be empty")
		}
		if len(text) > models.MaxTextLength {
			return models.Task{}, newValidationError("Task text must be at most %d characters", models.MaxTextLength)
		}
	}

	if input.Priority != nil && !models.Priority(*input.Priority).Valid() {
		return models.Task{}, newValidationError("Invalid priority. Must be low, medium, or high")
	}

	var dueDate *models.Date
	if input.DueDate != nil && *input.DueDate != "" {
		parsed, err := models.ParseDate(*input.DueDate)
		if err != nil {
			return models.Task{}, newValidationError("Invalid due date format. Use YYYY-MM-DD")
		}
		dueDate = &parsed
	}

	var task models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if input.Text != nil {
			task.Text = text
		}
		if input.Completed != nil {
			task.Completed = *input.Completed
		}
		if input.Priority != nil {
			task.Priority = models.Priority(*input.Priority)
		}
		if input.DueDate != nil {
			task.DueDate = dueDate
		}

		task.UpdatedAt = time.Now().UTC()

		return tx.Save(&task).Error
	})
	if err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		return tx.Delete(&task).Error
	})
}

func (s *TaskServiceImpl) GetStats(db *gorm.DB) (TaskStats, error) {
	var stats TaskStats

	if err := db.Model(&models.Task{}).Count(&stats.Total).Error; err != nil {
		return TaskStats{}, err
	}

	if err := db.Model(&models.Task{}).Where("completed = ?", true).Count(&stats.Completed).Error; err != nil {
		return TaskStats{}, err
	}
	stats.Pending = stats.Total - stats.Completed

	today := models.Today()
	if err := db.Model(&models.Task{}).
		Where("due_date < ? AND completed = ?", today.Time, false).
		Count(&stats.Overdue).Error; err != nil {
		return TaskStats{}, err
	}

	priorityCounts := []struct {
		Priority models.Priority
		Count    *int64
	}{
		{models.PriorityHigh, &stats.ByPriority.High},
		{models.PriorityMedium, &stats.ByPriority.Medium},
		{models.PriorityLow, &stats.ByPriority.Low},
	}
	for _, pc := range priorityCounts {
		if err := db.Model(&models.Task{}).Where("priority = ?", pc.Priority).Count(pc.Count).Error; err != nil {
			return TaskStats{}, err
		}
	}

	return stats, nil
}

func (s *TaskServiceImpl) BulkUpdateTasks(db *gorm.DB, ids []uint, updates BulkUpdateInput) ([]models.Task, error) {
	if len(ids) == 0 {
		return nil, newValidationError("task_ids must be a non-empty list")
	}

	if updates.Priority != nil && !models.Priority(*updates.Priority).Valid() {
		return nil, newValidationError("Invalid priority. Must be low, medium, or high")
	}

	var tasks []models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", ids).Find(&tasks).Error; err != nil {
			return err
		}

		// All ids must resolve before anything is touched.
		if len(tasks) != len(ids) {
			return ErrTaskNotFound
		}

		now := time.Now().UTC()
		for i := range tasks {
			if updates.Completed != nil {
				tasks[i].Completed = *updates.Completed
			}
			if updates.Priority != nil {
				tasks[i].Priority = models.Priority(*updates.Priority)
			}
			tasks[i].UpdatedAt = now

			if err := tx.Save(&tasks[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return tasks, nil
}
