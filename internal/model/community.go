package model

import (
	"time"
)

type PostStatus string

const (
	PostPending  PostStatus = "pending"
	PostApproved PostStatus = "approved"
	PostRejected PostStatus = "rejected"
	PostReported PostStatus = "reported"
)

const (
	MaxPostTags       = 5
	DefaultReportText = "Contenu inapproprié"
)

type PostReport struct {
	UserID     string    `json:"userId"`
	Reason     string    `json:"reason"`
	ReportedAt time.Time `json:"reportedAt"`
}

type CommunityReply struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	Likes      []string  `json:"likes"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CommunityPost 社区帖子。作者名/邮箱冗余存储，不做关联查询。
// Status 与 Reports 相互独立：已通过的帖子同样可以累积举报。
// swagger:model CommunityPost
type CommunityPost struct {
	Document
	AuthorID    string           `gorm:"index;type:varchar(36)" json:"authorId"`
	AuthorName  string           `gorm:"size:100" json:"authorName"`
	AuthorEmail string           `gorm:"size:100" json:"authorEmail"`
	ProgrammeID *string          `gorm:"index;type:varchar(36)" json:"programmeId"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Content     string           `gorm:"type:text;not null" json:"content"`
	Tags        []string         `gorm:"serializer:json;type:json" json:"tags"`
	Status      PostStatus       `gorm:"size:20;index;default:'approved'" json:"status"`
	Replies     []CommunityReply `gorm:"serializer:json;type:json" json:"replies"`
	Likes       []string         `gorm:"serializer:json;type:json" json:"likes"`
	Reports     []PostReport     `gorm:"serializer:json;type:json" json:"reports"`
}

func (CommunityPost) TableName() string {
	return "community_posts"
}

// PostFilter 列表查询条件，零值表示不过滤
type PostFilter struct {
	Status      PostStatus
	ProgrammeID string
	Limit       int
}

func (p *CommunityPost) LikedBy(userID string) bool {
	return containsID(p.Likes, userID)
}

// AddLike 集合语义，已存在时返回 false
func (p *CommunityPost) AddLike(userID string) bool {
	if containsID(p.Likes, userID) {
		return false
	}
	p.Likes = append(p.Likes, userID)
	return true
}

// RemoveLike 不存在时返回 false
func (p *CommunityPost) RemoveLike(userID string) bool {
	var removed bool
	p.Likes, removed = removeID(p.Likes, userID)
	return removed
}

func (p *CommunityPost) AppendReply(reply CommunityReply) {
	if reply.Likes == nil {
		reply.Likes = []string{}
	}
	p.Replies = append(p.Replies, reply)
}

// AddReport 不按用户去重
func (p *CommunityPost) AddReport(report PostReport) {
	p.Reports = append(p.Reports, report)
}

func (p *CommunityPost) ReplyByID(id string) *CommunityReply {
	for i := range p.Replies {
		if p.Replies[i].ID == id {
			return &p.Replies[i]
		}
	}
	return nil
}

// ToggleLike 切换回复点赞，返回切换后的状态
func (r *CommunityReply) ToggleLike(userID string) bool {
	if containsID(r.Likes, userID) {
		r.Likes, _ = removeID(r.Likes, userID)
		return false
	}
	r.Likes = append(r.Likes, userID)
	return true
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids))
	removed := false
	for _, v := range ids {
		if v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}
