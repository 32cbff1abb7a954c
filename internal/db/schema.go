package db

import (
	"lms-service/internal/course"
	"lms-service/internal/user"
)

// Schema lists the application tables, parents first.
func Schema() []Migration {
	return []Migration{
		{Model: (*user.User)(nil)},
		{Model: (*course.Course)(nil)},
		{
			Model: (*course.Assignment)(nil),
			ForeignKeys: []string{
				`("course_id") REFERENCES "courses" ("id") ON DELETE CASCADE`,
				`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			},
		},
	}
}
