// Package progress owns task weight normalization and project completion
// math. Weights are relative: each task's share is its raw weight divided by
// the project's raw total, so any change to the task set invalidates every
// other task's weight and callers must always recompute over the full set.
package progress

import (
	"math"

	"github.com/projectflow/projectflow-api/internal/models"
)

// RecalculateWeights renormalizes every task's weight so the set sums to 100,
// each share rounded to two decimals.
//
// Because each weight is rounded independently, the sum can drift from 100 by
// up to 0.005 per task (e.g. three equal tasks come out as 33.33 each, summing
// to 99.99). That drift is accepted behavior, not corrected here.
func RecalculateWeights(tasks []models.Task) {
	totalRaw := 0
	for i := range tasks {
		totalRaw += tasks[i].RawWeight
	}
	if totalRaw <= 0 {
		return
	}

	for i := range tasks {
		tasks[i].Weight = round2(float64(tasks[i].RawWeight) / float64(totalRaw) * 100)
	}
}

// Completion returns the project progress percentage: the completed share of
// the total task weight, rounded to a whole number. An empty task set yields 0.
func Completion(tasks []models.Task) int {
	var totalWeight, completedWeight float64
	for i := range tasks {
		totalWeight += tasks[i].Weight
		if tasks[i].Status == models.TaskStatusCompleted {
			completedWeight += tasks[i].Weight
		}
	}
	if totalWeight <= 0 {
		return 0
	}

	return int(math.Round(completedWeight / totalWeight * 100))
}

// NextStatus derives the project status after a progress recompute. A project
// that is still Pending stays Pending until at least one developer has
// accepted; otherwise progress drives the In Progress / Completed transition.
func NextStatus(current models.ProjectStatus, completion int, acceptedDevelopers int) models.ProjectStatus {
	if completion >= 100 {
		return models.ProjectStatusCompleted
	}
	if current == models.ProjectStatusPending && acceptedDevelopers == 0 {
		return models.ProjectStatusPending
	}
	return models.ProjectStatusInProgress
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
