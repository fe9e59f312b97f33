package service

import (
	"context"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"faaqs_backend/pkg/logger"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

type CommunityService struct {
	PostRepo PostStore
	UserRepo UserStore

	listLimit atomic.Int64
	now       func() time.Time
}

func NewCommunityService(postRepo PostStore, userRepo UserStore, listLimit int) *CommunityService {
	s := &CommunityService{
		PostRepo: postRepo,
		UserRepo: userRepo,
		now:      time.Now,
	}
	s.SetListLimit(listLimit)
	return s
}

// SetListLimit 热更新公开列表条数上限
func (s *CommunityService) SetListLimit(limit int) {
	if limit <= 0 {
		limit = util.DefaultPostLimit
	}
	s.listLimit.Store(int64(limit))
}

type PostRequest struct {
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	Tags        []string `json:"tags"`
	ProgrammeID *string  `json:"programmeId"`
}

type ReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

type ReportRequest struct {
	Reason string `json:"reason"`
}

func (r *PostRequest) normalize() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	if r.Title == "" {
		return util.NewValidationError("title", "required")
	}
	if r.Content == "" {
		return util.NewValidationError("content", "required")
	}
	if utf8.RuneCountInString(r.Title) > util.MaxPostTitle {
		return util.NewValidationError("title", "too long")
	}
	if utf8.RuneCountInString(r.Content) > util.MaxPostContent {
		return util.NewValidationError("content", "too long")
	}

	tags := make([]string, 0, len(r.Tags))
	seen := make(map[string]bool)
	for _, t := range r.Tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	if len(tags) > model.MaxPostTags {
		return util.NewValidationError("tags", "at most 5 tags")
	}
	r.Tags = tags

	if r.ProgrammeID != nil && strings.TrimSpace(*r.ProgrammeID) == "" {
		r.ProgrammeID = nil
	}
	return nil
}

// CreatePost 公开入口创建的帖子直接为 approved，不经过 pending
func (s *CommunityService) CreatePost(ctx context.Context, authorID string, req PostRequest) (*model.CommunityPost, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	author, err := s.UserRepo.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	post := &model.CommunityPost{
		AuthorID:    author.UID,
		AuthorName:  author.Name(),
		AuthorEmail: author.Email,
		ProgrammeID: req.ProgrammeID,
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		Status:      model.PostApproved,
		Replies:     []model.CommunityReply{},
		Likes:       []string{},
		Reports:     []model.PostReport{},
	}
	if err := s.PostRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts 公开列表只含 approved，按创建时间倒序
func (s *CommunityService) ListPosts(ctx context.Context, programmeID string) ([]model.CommunityPost, error) {
	return s.list(ctx, model.PostFilter{
		Status:      model.PostApproved,
		ProgrammeID: programmeID,
		Limit:       int(s.listLimit.Load()),
	})
}

// AdminListPosts 全部状态，status 为空时不过滤
func (s *CommunityService) AdminListPosts(ctx context.Context, status model.PostStatus) ([]model.CommunityPost, error) {
	return s.list(ctx, model.PostFilter{Status: status})
}

func (s *CommunityService) list(ctx context.Context, filter model.PostFilter) ([]model.CommunityPost, error) {
	posts, err := s.PostRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.CommunityPost{}
	}
	return posts, nil
}

// GetPost 未通过审核的帖子对非管理员不可见
func (s *CommunityService) GetPost(ctx context.Context, id string, isAdmin bool) (*model.CommunityPost, error) {
	return s.visiblePost(ctx, id, isAdmin)
}

// visiblePost 读取与互动共用的可见性规则，对非管理员隐藏的帖子一律按不存在处理
func (s *CommunityService) visiblePost(ctx context.Context, id string, isAdmin bool) (*model.CommunityPost, error) {
	post, err := s.PostRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && post.Status != model.PostApproved {
		return nil, util.ErrNotFound
	}
	return post, nil
}

// LikePost 集合语义，重复点赞不变
func (s *CommunityService) LikePost(ctx context.Context, postID, userID string, isAdmin bool) (*model.CommunityPost, error) {
	post, err := s.visiblePost(ctx, postID, isAdmin)
	if err != nil {
		return nil, err
	}
	if !post.AddLike(userID) {
		return post, nil
	}
	return post, s.PostRepo.UpdateFields(ctx, post, "likes")
}

// UnlikePost 未点赞时为空操作
func (s *CommunityService) UnlikePost(ctx context.Context, postID, userID string, isAdmin bool) (*model.CommunityPost, error) {
	post, err := s.visiblePost(ctx, postID, isAdmin)
	if err != nil {
		return nil, err
	}
	if !post.RemoveLike(userID) {
		return post, nil
	}
	return post, s.PostRepo.UpdateFields(ctx, post, "likes")
}

func (s *CommunityService) ToggleLike(ctx context.Context, postID, userID string, isAdmin bool) (*model.CommunityPost, bool, error) {
	post, err := s.visiblePost(ctx, postID, isAdmin)
	if err != nil {
		return nil, false, err
	}
	if post.LikedBy(userID) {
		post, err = s.UnlikePost(ctx, postID, userID, isAdmin)
		return post, false, err
	}
	post, err = s.LikePost(ctx, postID, userID, isAdmin)
	return post, true, err
}

func (s *CommunityService) Reply(ctx context.Context, postID, authorID string, isAdmin bool, req ReplyRequest) (*model.CommunityReply, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, util.NewValidationError("content", "required")
	}
	if utf8.RuneCountInString(content) > util.MaxPostContent {
		return nil, util.NewValidationError("content", "too long")
	}

	author, err := s.UserRepo.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	post, err := s.visiblePost(ctx, postID, isAdmin)
	if err != nil {
		return nil, err
	}

	reply := model.CommunityReply{
		ID:         model.GenerateUUID(),
		AuthorID:   author.UID,
		AuthorName: author.Name(),
		Content:    content,
		Likes:      []string{},
		CreatedAt:  s.now(),
	}
	post.AppendReply(reply)
	if err := s.PostRepo.UpdateFields(ctx, post, "replies"); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (s *CommunityService) ToggleReplyLike(ctx context.Context, postID, replyID, userID string, isAdmin bool) (*model.CommunityReply, bool, error) {
	post, err := s.visiblePost(ctx, postID, isAdmin)
	if err != nil {
		return nil, false, err
	}
	reply := post.ReplyByID(replyID)
	if reply == nil {
		return nil, false, util.ErrNotFound
	}
	liked := reply.ToggleLike(userID)
	if err := s.PostRepo.UpdateFields(ctx, post, "replies"); err != nil {
		return nil, false, err
	}
	return reply, liked, nil
}

// Report 同一用户可重复举报，每次都追加一条
func (s *CommunityService) Report(ctx context.Context, postID, userID string, isAdmin bool, req ReportRequest) (*model.CommunityPost, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = model.DefaultReportText
	}
	post, err := s.visiblePost(ctx, postID, isAdmin)
	if err != nil {
		return nil, err
	}
	post.AddReport(model.PostReport{
		UserID:     userID,
		Reason:     reason,
		ReportedAt: s.now(),
	})
	if err := s.PostRepo.UpdateFields(ctx, post, "reports"); err != nil {
		return nil, err
	}
	logger.Log.Info("post reported", zap.String("postID", postID), zap.Int("reports", len(post.Reports)))
	return post, nil
}

func (s *CommunityService) Approve(ctx context.Context, postID string) (*model.CommunityPost, error) {
	return s.setStatus(ctx, postID, model.PostApproved)
}

func (s *CommunityService) Reject(ctx context.Context, postID string) (*model.CommunityPost, error) {
	return s.setStatus(ctx, postID, model.PostRejected)
}

// setStatus 无条件覆盖，不校验当前状态
func (s *CommunityService) setStatus(ctx context.Context, postID string, status model.PostStatus) (*model.CommunityPost, error) {
	post, err := s.PostRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Status = status
	if err := s.PostRepo.UpdateFields(ctx, post, "status"); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost 物理删除
func (s *CommunityService) DeletePost(ctx context.Context, postID string) error {
	if err := s.PostRepo.Delete(ctx, postID); err != nil {
		return err
	}
	logger.Log.Info("post deleted", zap.String("postID", postID))
	return nil
}
