package validate

// Per-resource schemas. Rules mirror the storage-level CHECK constraints so
// bad input is reported field by field instead of tripping a constraint.

var taskFields = []Field{
	{Name: "name", Kind: String, Required: true, MinLen: 3},
	{Name: "creator", Kind: String, Required: true, MinLen: 2},
	{Name: "status", Kind: String, Enum: []string{"pending", "approved", "rejected"}},
	{Name: "approver", Kind: String},
	{Name: "timer", Kind: String},
	{Name: "completed", Kind: Bool},
}

var (
	TaskCreate = Schema{Fields: taskFields}
	TaskUpdate = Schema{Fields: taskFields}
)

var articleFields = []Field{
	{Name: "headline", Kind: String, Required: true, MinLen: 5},
	{Name: "link", Kind: String, Required: true, URL: true},
}

var (
	ArticleCreate = Schema{Fields: articleFields}
	ArticleUpdate = Schema{Fields: articleFields}
)

var checklistFields = []Field{
	{Name: "title", Kind: String, Required: true, MinLen: 3},
	{Name: "description", Kind: String},
	{Name: "theme", Kind: String, Enum: []string{"blue", "green", "purple", "red", "yellow", "indigo"}},
}

var (
	ChecklistCreate = Schema{Fields: checklistFields}
	ChecklistUpdate = Schema{Fields: checklistFields}
)

var checklistTaskFields = []Field{
	{Name: "title", Kind: String, Required: true, MinLen: 1},
	{Name: "priority", Kind: String, Enum: []string{"High", "Medium", "Low"}},
	{Name: "completed", Kind: Bool},
}

var (
	ChecklistTaskCreate = Schema{Fields: checklistTaskFields}
	ChecklistTaskUpdate = Schema{Fields: checklistTaskFields}
)

var subtaskFields = []Field{
	{Name: "title", Kind: String, Required: true, MinLen: 2},
	{Name: "completed", Kind: Bool},
}

var (
	SubtaskCreate = Schema{Fields: subtaskFields}
	SubtaskUpdate = Schema{Fields: subtaskFields}
)

var projectFields = []Field{
	{Name: "name", Kind: String, Required: true, MinLen: 3},
	{Name: "description", Kind: String},
	{Name: "start_date", Kind: Date, Required: true},
	{Name: "end_date", Kind: Date, Required: true},
	{Name: "status", Kind: String, Enum: []string{"planning", "active", "on-hold", "completed", "cancelled"}},
	{Name: "priority", Kind: String, Enum: []string{"low", "medium", "high", "urgent"}},
	{Name: "manager", Kind: String},
	{Name: "budget", Kind: Number, NonNeg: true},
}

var projectDates = []DatePair{{Earlier: "start_date", Later: "end_date"}}

var (
	ProjectCreate = Schema{Fields: projectFields, DatePairs: projectDates}
	ProjectUpdate = Schema{Fields: projectFields, DatePairs: projectDates}
)

var milestoneFields = []Field{
	{Name: "title", Kind: String, Required: true, MinLen: 3},
	{Name: "description", Kind: String},
	{Name: "due_date", Kind: Date},
	{Name: "completed", Kind: Bool},
}

var (
	MilestoneCreate = Schema{Fields: milestoneFields}
	MilestoneUpdate = Schema{Fields: milestoneFields}
)

var resourceFields = []Field{
	{Name: "resource_name", Kind: String, Required: true, MinLen: 2},
	{Name: "role", Kind: String},
	{Name: "hours_per_week", Kind: Number, NonNeg: true},
	{Name: "start_date", Kind: Date},
	{Name: "end_date", Kind: Date},
	{Name: "hourly_rate", Kind: Number, NonNeg: true},
}

var (
	ResourceCreate = Schema{Fields: resourceFields}
	ResourceUpdate = Schema{Fields: resourceFields}
)

var dailyTaskFields = []Field{
	{Name: "title", Kind: String, Required: true, MinLen: 3},
	{Name: "description", Kind: String},
	{Name: "assigned_to", Kind: String, Required: true, MinLen: 2},
	{Name: "priority", Kind: String, Enum: []string{"low", "medium", "high", "urgent"}},
	{Name: "status", Kind: String, Enum: []string{"pending", "in-progress", "completed", "blocked"}},
	{Name: "due_date", Kind: Date, Required: true},
	{Name: "estimated_hours", Kind: Number, NonNeg: true},
}

var (
	DailyTaskCreate = Schema{Fields: dailyTaskFields}
	DailyTaskUpdate = Schema{Fields: dailyTaskFields}
)

// ProgressEntry has no update variant: entries are append-only.
var ProgressEntry = Schema{Fields: []Field{
	{Name: "progress_date", Kind: Date, Required: true},
	{Name: "hours_spent", Kind: Number, Required: true, NonNeg: true},
	{Name: "progress_percentage", Kind: Number, Min: fptr(0), Max: fptr(100)},
	{Name: "notes", Kind: String},
}}

var reportFields = []Field{
	{Name: "reporter_name", Kind: String, Required: true, MinLen: 2},
	{Name: "report_date", Kind: Date, Required: true},
	{Name: "tasks_completed", Kind: String},
	{Name: "tasks_in_progress", Kind: String},
	{Name: "tasks_blocked", Kind: String},
	{Name: "hours_worked", Kind: Number, NonNeg: true},
	{Name: "challenges", Kind: String},
	{Name: "next_day_plan", Kind: String},
	{Name: "mood_rating", Kind: Int, Min: fptr(1), Max: fptr(5)},
	{Name: "productivity_score", Kind: Int, Min: fptr(1), Max: fptr(5)},
}

var (
	ReportCreate = Schema{Fields: reportFields}
	ReportUpdate = Schema{Fields: reportFields}
)
