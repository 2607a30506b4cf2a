package mapper

import (
	"casechat-be/internal/entity"
	"casechat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatMessageToEntity(c *model.ChatMessage) *entity.ChatMessage {
	if c == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:        c.Id,
		SessionId: c.SessionId,
		ActorId:   c.ActorId,
		Role:      c.Role,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(c *entity.ChatMessage) *model.ChatMessage {
	if c == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:        c.Id,
		SessionId: c.SessionId,
		ActorId:   c.ActorId,
		Role:      c.Role,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ChatMapper) ChatCitationToEntity(c *model.ChatCitation) *entity.ChatCitation {
	if c == nil {
		return nil
	}
	return &entity.ChatCitation{
		Id:            c.Id,
		ChatMessageId: c.ChatMessageId,
		DocumentId:    c.DocumentId,
		Ordinal:       c.Ordinal,
		Snippet:       c.Snippet,
		Score:         c.Score,
		SourceLocator: c.SourceLocator,
		CreatedAt:     c.CreatedAt,
	}
}

func (m *ChatMapper) ChatCitationToModel(c *entity.ChatCitation) *model.ChatCitation {
	if c == nil {
		return nil
	}
	return &model.ChatCitation{
		Id:            c.Id,
		ChatMessageId: c.ChatMessageId,
		DocumentId:    c.DocumentId,
		Ordinal:       c.Ordinal,
		Snippet:       c.Snippet,
		Score:         c.Score,
		SourceLocator: c.SourceLocator,
		CreatedAt:     c.CreatedAt,
	}
}
