package chi

import (
	"time"

	"github.com/leaf-cloud/straindex/internal/domain"
	"github.com/leaf-cloud/straindex/internal/usecase/ask"
	"github.com/leaf-cloud/straindex/internal/usecase/terpene"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type askRequest struct {
	Question      string `json:"question"`
	Model         string `json:"model,omitempty"`
	SystemMessage string `json:"systemMessage,omitempty"`
}

type askResponse struct {
	Answer       string    `json:"answer"`
	Model        string    `json:"model"`
	TokensUsed   int       `json:"tokensUsed"`
	FinishReason string    `json:"finishReason,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func toAskResponse(r ask.Response) askResponse {
	return askResponse{
		Answer:       r.Answer,
		Model:        r.Model,
		TokensUsed:   r.TokensUsed,
		FinishReason: r.FinishReason,
		Timestamp:    r.Timestamp,
	}
}

type terpeneRequest struct {
	Name         string   `json:"name"`
	Aroma        string   `json:"aroma,omitempty"`
	Effects      []string `json:"effects,omitempty"`
	Description  string   `json:"description,omitempty"`
	BoilingPoint float64  `json:"boilingPoint,omitempty"`
}

func (r terpeneRequest) toDomain() domain.Terpene {
	return domain.Terpene{
		Name:         r.Name,
		Aroma:        r.Aroma,
		Effects:      r.Effects,
		Description:  r.Description,
		BoilingPoint: r.BoilingPoint,
	}
}

type terpenePatchRequest struct {
	Name         *string   `json:"name"`
	Aroma        *string   `json:"aroma"`
	Effects      *[]string `json:"effects"`
	Description  *string   `json:"description"`
	BoilingPoint *float64  `json:"boilingPoint"`
}

func (r terpenePatchRequest) toDomain() domain.TerpenePatch {
	return domain.TerpenePatch{
		Name:         r.Name,
		Aroma:        r.Aroma,
		Effects:      r.Effects,
		Description:  r.Description,
		BoilingPoint: r.BoilingPoint,
	}
}

type terpeneResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Aroma        string    `json:"aroma,omitempty"`
	Effects      []string  `json:"effects"`
	Description  string    `json:"description,omitempty"`
	BoilingPoint float64   `json:"boilingPoint,omitempty"`
	StrainIDs    []string  `json:"strainIds"`
	VectorID     string    `json:"vectorId,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toTerpeneResponse(t domain.Terpene) terpeneResponse {
	effects := t.Effects
	if effects == nil {
		effects = []string{}
	}
	strainIDs := t.StrainIDs
	if strainIDs == nil {
		strainIDs = []string{}
	}
	return terpeneResponse{
		ID:           t.ID,
		Name:         t.Name,
		Aroma:        t.Aroma,
		Effects:      effects,
		Description:  t.Description,
		BoilingPoint: t.BoilingPoint,
		StrainIDs:    strainIDs,
		VectorID:     t.VectorID,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

type terpeneListResponse struct {
	Items    []terpeneResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

type queryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"topK,omitempty"`
}

type querySource struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

type queryResponse struct {
	Answer     string        `json:"answer"`
	Model      string        `json:"model,omitempty"`
	TokensUsed int           `json:"tokensUsed"`
	Sources    []querySource `json:"sources"`
}

func toQueryResponse(a terpene.QueryAnswer) queryResponse {
	sources := make([]querySource, 0, len(a.Sources))
	for _, s := range a.Sources {
		sources = append(sources, querySource{ID: s.ID, Score: s.Score, Text: s.Text})
	}
	return queryResponse{
		Answer:     a.Answer,
		Model:      a.Model,
		TokensUsed: a.TokensUsed,
		Sources:    sources,
	}
}

type strainRequest struct {
	Name        string  `json:"name"`
	Type        string  `json:"type,omitempty"`
	THC         float64 `json:"thc,omitempty"`
	CBD         float64 `json:"cbd,omitempty"`
	Description string  `json:"description,omitempty"`
}

func (r strainRequest) toDomain() domain.Strain {
	return domain.Strain{
		Name:        r.Name,
		Type:        domain.StrainType(r.Type),
		THC:         r.THC,
		CBD:         r.CBD,
		Description: r.Description,
	}
}

type strainPatchRequest struct {
	Name        *string  `json:"name"`
	Type        *string  `json:"type"`
	THC         *float64 `json:"thc"`
	CBD         *float64 `json:"cbd"`
	Description *string  `json:"description"`
}

func (r strainPatchRequest) toDomain() domain.StrainPatch {
	p := domain.StrainPatch{
		Name:        r.Name,
		THC:         r.THC,
		CBD:         r.CBD,
		Description: r.Description,
	}
	if r.Type != nil {
		t := domain.StrainType(*r.Type)
		p.Type = &t
	}
	return p
}

type strainResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type,omitempty"`
	THC         float64   `json:"thc"`
	CBD         float64   `json:"cbd"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toStrainResponse(s domain.Strain) strainResponse {
	return strainResponse{
		ID:          s.ID,
		Name:        s.Name,
		Type:        string(s.Type),
		THC:         s.THC,
		CBD:         s.CBD,
		Description: s.Description,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type strainListResponse struct {
	Items    []strainResponse `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

type eventRequest struct {
	UserID    string            `json:"userId"`
	EventType string            `json:"eventType"`
	Category  string            `json:"category"`
	Intent    string            `json:"intent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
	Source    string            `json:"source,omitempty"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
}

func (r eventRequest) toDomain() *domain.UserEvent {
	return &domain.UserEvent{
		UserID:    r.UserID,
		EventType: r.EventType,
		Category:  domain.Category(r.Category),
		Intent:    domain.Intent(r.Intent),
		Metadata:  r.Metadata,
		SessionID: r.SessionID,
		Source:    r.Source,
		Timestamp: r.Timestamp,
	}
}

type eventAcceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type interactionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EventType string    `json:"eventType"`
	Category  string    `json:"category"`
	Intent    string    `json:"intent,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func toInteractionResponse(in domain.Interaction) interactionResponse {
	return interactionResponse{
		ID:        in.ID,
		UserID:    in.UserID,
		EventType: in.EventType,
		Category:  string(in.Category),
		Intent:    string(in.Intent),
		SessionID: in.SessionID,
		Timestamp: in.Timestamp,
	}
}

type journeyResponse struct {
	UserID string                `json:"userId"`
	Items  []interactionResponse `json:"items"`
}

type timelineEntryResponse struct {
	EventType string    `json:"eventType"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

type behaviorResponse struct {
	UserID           string                  `json:"userId"`
	TotalEvents      int                     `json:"totalEvents"`
	Categories       map[string]int          `json:"categories"`
	Intents          map[string]int          `json:"intents"`
	DominantCategory string                  `json:"dominantCategory,omitempty"`
	Timeline         []timelineEntryResponse `json:"timeline"`
}

func toBehaviorResponse(p domain.BehaviorPattern) behaviorResponse {
	categories := make(map[string]int, len(p.Categories))
	for k, v := range p.Categories {
		categories[string(k)] = v
	}
	intents := make(map[string]int, len(p.Intents))
	for k, v := range p.Intents {
		intents[string(k)] = v
	}
	timeline := make([]timelineEntryResponse, 0, len(p.Timeline))
	for _, e := range p.Timeline {
		timeline = append(timeline, timelineEntryResponse{
			EventType: e.EventType,
			Category:  string(e.Category),
			Timestamp: e.Timestamp,
		})
	}
	return behaviorResponse{
		UserID:           p.UserID,
		TotalEvents:      p.TotalEvents,
		Categories:       categories,
		Intents:          intents,
		DominantCategory: string(p.DominantCategory),
		Timeline:         timeline,
	}
}

type similarUserResponse struct {
	UserID           string   `json:"userId"`
	Similarity       float64  `json:"similarity"`
	SharedCategories []string `json:"sharedCategories"`
}

type similarUsersResponse struct {
	UserID string                `json:"userId"`
	Items  []similarUserResponse `json:"items"`
}

func toSimilarUsersResponse(userID string, users []domain.SimilarUser) similarUsersResponse {
	items := make([]similarUserResponse, 0, len(users))
	for _, u := range users {
		shared := make([]string, 0, len(u.SharedCategories))
		for _, c := range u.SharedCategories {
			shared = append(shared, string(c))
		}
		items = append(items, similarUserResponse{
			UserID:           u.UserID,
			Similarity:       u.Similarity,
			SharedCategories: shared,
		})
	}
	return similarUsersResponse{UserID: userID, Items: items}
}

type engagementResponse struct {
	UserID                 string  `json:"userId"`
	WindowDays             int     `json:"windowDays"`
	Interactions           int     `json:"interactions"`
	Sessions               int     `json:"sessions"`
	InteractionsPerSession float64 `json:"interactionsPerSession"`
	ActiveDays             int     `json:"activeDays"`
	EngagementRate         float64 `json:"engagementRate"`
}

func toEngagementResponse(m domain.EngagementMetrics) engagementResponse {
	return engagementResponse{
		UserID:                 m.UserID,
		WindowDays:             m.WindowDays,
		Interactions:           m.Interactions,
		Sessions:               m.Sessions,
		InteractionsPerSession: m.InteractionsPerSession,
		ActiveDays:             m.ActiveDays,
		EngagementRate:         m.EngagementRate,
	}
}

type likelyActionResponse struct {
	EventType   string  `json:"eventType"`
	Probability float64 `json:"probability"`
}

type predictionResponse struct {
	UserID        string                 `json:"userId"`
	LikelyActions []likelyActionResponse `json:"likelyActions"`
	Confidence    float64                `json:"confidence"`
}

func toPredictionResponse(p domain.NextActionPrediction) predictionResponse {
	actions := make([]likelyActionResponse, 0, len(p.LikelyActions))
	for _, a := range p.LikelyActions {
		actions = append(actions, likelyActionResponse{
			EventType:   a.EventType,
			Probability: a.Probability,
		})
	}
	return predictionResponse{
		UserID:        p.UserID,
		LikelyActions: actions,
		Confidence:    p.Confidence,
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
