package dto

// CreateYearRequest 创建年份请求
type CreateYearRequest struct {
	Label      string  `json:"label"`
	Status     *string `json:"status"`
	OrderIndex *string `json:"orderIndex"`
}

// YearResponse 年份响应
type YearResponse struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	OrderIndex string `json:"orderIndex"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}
