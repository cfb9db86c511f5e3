package record

import "context"

// ServiceInterface defines the contract for daily record operations
type ServiceInterface interface {
	GetRecord(ctx context.Context, residentID, date string) (*DailyRecord, error)
	AppendVital(ctx context.Context, actor, residentID, date string, v Vital) (*DailyRecord, error)
	AppendExcretion(ctx context.Context, actor, residentID, date string, e Excretion) (*DailyRecord, error)
	AppendMeal(ctx context.Context, actor, residentID, date string, m Meal) (*DailyRecord, error)
	AppendHydration(ctx context.Context, actor, residentID, date string, h Hydration) (*DailyRecord, error)
	RemoveEntry(ctx context.Context, actor, residentID, date string, kind Kind, entryID string) (*DailyRecord, error)
	ReplaceLists(ctx context.Context, actor, residentID, date string, patch Patch) (*DailyRecord, error)
	BulkAppend(ctx context.Context, actor string, req BulkAppendRequest) (*BulkAppendResult, error)
	DayOverview(ctx context.Context, date string) ([]DayEntry, error)
	ResidentHistory(ctx context.Context, residentID string, days int) ([]DailyRecord, int, error)
}

var _ ServiceInterface = (*Service)(nil)
