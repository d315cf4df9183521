package progress

import (
	"math"
	"testing"

	"github.com/projectflow/projectflow-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func tasksWithRawWeights(raws ...int) []models.Task {
	tasks := make([]models.Task, len(raws))
	for i, raw := range raws {
		tasks[i] = models.Task{RawWeight: raw, Status: models.TaskStatusPending}
	}
	return tasks
}

func TestRecalculateWeights_SingleTask(t *testing.T) {
	tasks := tasksWithRawWeights(3)

	RecalculateWeights(tasks)

	assert.Equal(t, 100.0, tasks[0].Weight)
}

func TestRecalculateWeights_EqualPair(t *testing.T) {
	tasks := tasksWithRawWeights(1, 1)

	RecalculateWeights(tasks)

	assert.Equal(t, 50.0, tasks[0].Weight)
	assert.Equal(t, 50.0, tasks[1].Weight)
}

func TestRecalculateWeights_ThirdsKeepRoundingDrift(t *testing.T) {
	tasks := tasksWithRawWeights(1, 1, 1)

	RecalculateWeights(tasks)

	// Each share rounds to 33.33 independently; the sum is 99.99 and that
	// drift is kept rather than forced back to 100.
	for _, task := range tasks {
		assert.Equal(t, 33.33, task.Weight)
	}
	sum := tasks[0].Weight + tasks[1].Weight + tasks[2].Weight
	assert.InDelta(t, 99.99, sum, 1e-9)
}

func TestRecalculateWeights_SumStaysNear100(t *testing.T) {
	cases := [][]int{
		{1, 2, 3, 4, 5},
		{5, 5, 5},
		{1, 1, 1, 1, 1, 1, 1},
		{2, 3},
		{1, 5, 2, 2, 4, 3, 1, 5},
	}

	for _, raws := range cases {
		tasks := tasksWithRawWeights(raws...)
		RecalculateWeights(tasks)

		sum := 0.0
		for _, task := range tasks {
			sum += task.Weight
		}
		assert.Less(t, math.Abs(sum-100), 0.02*float64(len(tasks)),
			"raw weights %v summed to %v", raws, sum)
	}
}

func TestRecalculateWeights_ZeroTotalLeavesWeightsUntouched(t *testing.T) {
	tasks := []models.Task{{RawWeight: 0, Weight: 42}}

	RecalculateWeights(tasks)

	assert.Equal(t, 42.0, tasks[0].Weight)
}

func TestCompletion_HalfDone(t *testing.T) {
	tasks := []models.Task{
		{Weight: 50, Status: models.TaskStatusCompleted},
		{Weight: 50, Status: models.TaskStatusPending},
	}

	assert.Equal(t, 50, Completion(tasks))
}

func TestCompletion_EmptySet(t *testing.T) {
	assert.Equal(t, 0, Completion(nil))
	assert.Equal(t, 0, Completion([]models.Task{}))
}

func TestCompletion_AllCompleted(t *testing.T) {
	tasks := []models.Task{
		{Weight: 33.33, Status: models.TaskStatusCompleted},
		{Weight: 33.33, Status: models.TaskStatusCompleted},
		{Weight: 33.33, Status: models.TaskStatusCompleted},
	}

	// 99.99/99.99 still reads as fully complete.
	assert.Equal(t, 100, Completion(tasks))
}

func TestCompletion_WeightedMix(t *testing.T) {
	tasks := []models.Task{
		{Weight: 83.33, Status: models.TaskStatusCompleted},
		{Weight: 16.67, Status: models.TaskStatusInProgress},
	}

	assert.Equal(t, 83, Completion(tasks))
}

func TestNextStatus(t *testing.T) {
	// Reaching 100 completes the project regardless of prior state.
	assert.Equal(t, models.ProjectStatusCompleted,
		NextStatus(models.ProjectStatusInProgress, 100, 2))

	// Partial progress keeps an active project in progress.
	assert.Equal(t, models.ProjectStatusInProgress,
		NextStatus(models.ProjectStatusInProgress, 40, 2))

	// A pending project with no accepted developers stays pending.
	assert.Equal(t, models.ProjectStatusPending,
		NextStatus(models.ProjectStatusPending, 0, 0))

	// Once someone has accepted, recomputing moves it forward.
	assert.Equal(t, models.ProjectStatusInProgress,
		NextStatus(models.ProjectStatusPending, 0, 1))

	// A completed project whose task reopens drops back to In Progress.
	assert.Equal(t, models.ProjectStatusInProgress,
		NextStatus(models.ProjectStatusCompleted, 0, 1))
}
