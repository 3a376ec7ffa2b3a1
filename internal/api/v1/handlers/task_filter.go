package handlers

import (
	"strings"
	"time"

	"todo-backend/internal/models"
	"todo-backend/internal/repository"
)

// parseTaskFilter reads list filters through get. Empty values are ignored;
// malformed or out of range ones are returned as field errors.
func parseTaskFilter(get func(key string) string) (repository.TaskFilter, map[string]string) {
	var f repository.TaskFilter
	errs := map[string]string{}

	intParam := func(key string) *int {
		raw := strings.TrimSpace(get(key))
		if raw == "" {
			return nil
		}
		n, ok := parseID(raw)
		if !ok {
			errs[key] = "A valid positive integer is required."
			return nil
		}
		return &n
	}
	boolParam := func(key string) *bool {
		raw := strings.ToLower(strings.TrimSpace(get(key)))
		switch raw {
		case "":
			return nil
		case "true":
			v := true
			return &v
		case "false":
			v := false
			return &v
		}
		errs[key] = "Must be true or false."
		return nil
	}
	choiceParam := func(key string, choices []string) string {
		raw := strings.TrimSpace(get(key))
		if raw == "" {
			return ""
		}
		for _, c := range choices {
			if raw == c {
				return raw
			}
		}
		errs[key] = "Select a valid choice. " + raw + " is not one of the available choices."
		return ""
	}

	f.CategoryID = intParam("category")
	f.TagID = intParam("tag")
	f.Priority = choiceParam("priority", models.Priorities)
	f.Status = choiceParam("status", models.Statuses)
	f.Completed = boolParam("completed")
	f.Overdue = boolParam("overdue")
	f.Search = strings.TrimSpace(get("search"))

	if raw := strings.TrimSpace(get("due_date")); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			errs["due_date"] = "Enter a valid date in YYYY-MM-DD format."
		} else {
			f.DueDate = &d
		}
	}
	if limit := intParam("limit"); limit != nil {
		f.Limit = *limit
	}

	if len(errs) > 0 {
		return f, errs
	}
	return f, nil
}
