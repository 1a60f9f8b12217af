package api

import "encoding/json"

// List is the paged envelope returned by AnnoFab list endpoints.
type List[T any] struct {
	List       []T  `json:"list"`
	PageNo     int  `json:"page_no"`
	TotalCount int  `json:"total_count"`
	OverLimit  bool `json:"over_limit"`
}

type TaskPhase string

const (
	TaskPhaseAnnotation TaskPhase = "annotation"
	TaskPhaseInspection TaskPhase = "inspection"
	TaskPhaseAcceptance TaskPhase = "acceptance"
)

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusWorking    TaskStatus = "working"
	TaskStatusOnHold     TaskStatus = "on_hold"
	TaskStatusBreak      TaskStatus = "break"
	TaskStatusComplete   TaskStatus = "complete"
)

type Task struct {
	ProjectID       string         `json:"project_id"`
	TaskID          string         `json:"task_id"`
	Phase           TaskPhase      `json:"phase"`
	PhaseStage      int            `json:"phase_stage"`
	Status          TaskStatus     `json:"status"`
	AccountID       string         `json:"account_id"`
	InputDataIDList []string       `json:"input_data_id_list"`
	StartedDatetime string         `json:"started_datetime"`
	UpdatedDatetime string         `json:"updated_datetime"`
	WorkTimeSpan    int64          `json:"work_time_span"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// OperateTaskRequest changes a task's status. LastUpdatedDatetime must be the
// task's current updated_datetime; the server rejects stale values with 409.
type OperateTaskRequest struct {
	Status              TaskStatus `json:"status"`
	AccountID           string     `json:"account_id,omitempty"`
	LastUpdatedDatetime string     `json:"last_updated_datetime"`
}

type InspectionStatus string

const (
	InspectionStatusAnnotatorActionRequired InspectionStatus = "annotator_action_required"
	InspectionStatusErrorCorrected          InspectionStatus = "error_corrected"
	InspectionStatusNoCorrectionRequired    InspectionStatus = "no_correction_required"
)

type Inspection struct {
	ProjectID          string           `json:"project_id"`
	TaskID             string           `json:"task_id"`
	InputDataID        string           `json:"input_data_id"`
	InspectionID       string           `json:"inspection_id"`
	Phase              TaskPhase        `json:"phase"`
	PhaseStage         int              `json:"phase_stage"`
	CommenterAccountID string           `json:"commenter_account_id"`
	AnnotationID       *string          `json:"annotation_id"`
	Label              *string          `json:"label_id,omitempty"`
	Data               json.RawMessage  `json:"data,omitempty"`
	ParentInspectionID *string          `json:"parent_inspection_id"`
	Phrases            []string         `json:"phrases,omitempty"`
	Comment            string           `json:"comment"`
	Status             InspectionStatus `json:"status"`
	CreatedDatetime    string           `json:"created_datetime,omitempty"`
	UpdatedDatetime    string           `json:"updated_datetime,omitempty"`
}

const (
	BatchTypePut    = "Put"
	BatchTypeDelete = "Delete"
)

// BatchInspectionRequest is one element of the batch_update_inspections body.
type BatchInspectionRequest struct {
	ProjectID    string      `json:"project_id"`
	TaskID       string      `json:"task_id"`
	InputDataID  string      `json:"input_data_id"`
	InspectionID string      `json:"inspection_id"`
	Type         string      `json:"_type"`
	Inspection   *Inspection `json:"inspection,omitempty"`
}

type InputData struct {
	ProjectID             string            `json:"project_id"`
	InputDataID           string            `json:"input_data_id"`
	InputDataName         string            `json:"input_data_name"`
	InputDataPath         string            `json:"input_data_path"`
	OriginalInputDataPath string            `json:"original_input_data_path,omitempty"`
	SignRequired          bool              `json:"sign_required"`
	Metadata              map[string]string `json:"metadata"`
	UpdatedDatetime       string            `json:"updated_datetime"`
}

type JobStatus string

const (
	JobStatusProgress  JobStatus = "progress"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

const (
	JobTypeGenAnnotation = "gen-annotation"
	JobTypeGenTasks      = "gen-tasks"
	JobTypeGenInputs     = "gen-inputs"
)

type Job struct {
	ProjectID       string          `json:"project_id"`
	JobType         string          `json:"job_type"`
	JobID           string          `json:"job_id"`
	JobStatus       JobStatus       `json:"job_status"`
	JobExecution    json.RawMessage `json:"job_execution,omitempty"`
	JobDetail       json.RawMessage `json:"job_detail,omitempty"`
	CreatedDatetime string          `json:"created_datetime"`
	UpdatedDatetime string          `json:"updated_datetime"`
}

type MyAccount struct {
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
}

type ProjectMemberRole string

const (
	RoleOwner            ProjectMemberRole = "owner"
	RoleAccepter         ProjectMemberRole = "accepter"
	RoleWorker           ProjectMemberRole = "worker"
	RoleTrainingDataUser ProjectMemberRole = "training_data_user"
)

type ProjectMember struct {
	ProjectID    string            `json:"project_id"`
	AccountID    string            `json:"account_id"`
	UserID       string            `json:"user_id"`
	MemberRole   ProjectMemberRole `json:"member_role"`
	MemberStatus string            `json:"member_status"`
}
