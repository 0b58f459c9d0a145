package controllers

import (
	"log"
	"net/http"

	"Majanaaber/models"
	"Majanaaber/realtime"
	"Majanaaber/repositories"
	"Majanaaber/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocketController upgrades connections and binds each one to a live
// session for the requested scope. The session holds the state; the
// connection is just its transport: a snapshot on join, then every applied
// event, with inbound frames dispatched as commands.
type WebSocketController struct {
	Chat    *services.ChatService
	Notices repositories.NoticeRepository
	Hub     *realtime.Hub
}

func NewWebSocketController(chat *services.ChatService, notices repositories.NoticeRepository, hub *realtime.Hub) *WebSocketController {
	return &WebSocketController{Chat: chat, Notices: notices, Hub: hub}
}

// ServeWs открывает WebSocket для выбранной области:
//
//	/ws?scope=building&id=<building_id>
//	/ws?scope=conversation&id=<conversation_id>
//	/ws?scope=notice&id=<notice_id>
//	/ws?scope=directory
func (ctl *WebSocketController) ServeWs(c *gin.Context) {
	scope := c.Query("scope")
	scopeID := c.Query("id")
	user := currentTypingUser(c)

	if scope == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope is required"})
		return
	}
	if scope != "directory" && scopeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	if scope == "conversation" {
		conversation, err := ctl.Chat.ConvRepo.GetByID(scopeID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		if conversation.Participant1ID != user.UserID && conversation.Participant2ID != user.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this conversation"})
			return
		}
	}

	conn, err := realtime.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WebSocket] upgrade failed for user %s: %v", user.UserID, err)
		return
	}

	switch scope {
	case "building":
		ctl.serveBuilding(conn, scopeID, user)
	case "conversation":
		ctl.serveConversation(conn, scopeID, user)
	case "notice":
		ctl.serveNotice(conn, scopeID, user)
	case "directory":
		ctl.serveDirectory(conn, user)
	default:
		conn.Close()
	}
}

func (ctl *WebSocketController) serveBuilding(conn *websocket.Conn, buildingID string, user models.TypingUser) {
	session, err := services.NewBuildingChatSession(ctl.Chat, buildingID, user)
	if err != nil {
		log.Printf("[WebSocket] building session failed for %s: %v", user.UserID, err)
		conn.Close()
		return
	}

	client := realtime.NewClient(conn, user.UserID, user.UserName)
	client.SetCommandHandler(func(cmd realtime.Command) {
		var err error
		switch cmd.Action {
		case "send_message":
			err = session.SendMessage(cmd.Content)
		case "delete_message":
			err = session.DeleteMessage(cmd.MessageID)
		case "add_reaction":
			err = session.AddReaction(cmd.MessageID, cmd.Emoji)
		case "remove_reaction":
			err = session.RemoveReaction(cmd.MessageID, cmd.Emoji)
		case "mark_read":
			err = session.MarkMessageAsRead(cmd.MessageID)
		case "typing_start":
			session.HandleTypingStart()
		case "typing_stop":
			session.HandleTypingStop()
		}
		if err != nil {
			client.Enqueue(gin.H{"type": "error", "action": cmd.Action, "error": err.Error()})
		}
	})

	session.SetEventHandler(func(event realtime.Event) {
		client.Enqueue(event)
	})

	client.Enqueue(gin.H{"type": "snapshot", "messages": session.Messages()})
	go client.WritePump()
	client.ReadPump(session.Close)
}

func (ctl *WebSocketController) serveConversation(conn *websocket.Conn, conversationID string, user models.TypingUser) {
	conversation, err := ctl.Chat.ConvRepo.GetByID(conversationID)
	if err != nil {
		conn.Close()
		return
	}

	session, err := services.NewPeerChatSession(ctl.Chat, conversation, user)
	if err != nil {
		log.Printf("[WebSocket] conversation session failed for %s: %v", user.UserID, err)
		conn.Close()
		return
	}

	client := realtime.NewClient(conn, user.UserID, user.UserName)
	client.SetCommandHandler(func(cmd realtime.Command) {
		var err error
		switch cmd.Action {
		case "send_message":
			err = session.SendMessage(cmd.Content, cmd.ReplyToID, nil)
		case "edit_message":
			err = session.EditMessage(cmd.MessageID, cmd.Content)
		case "delete_message":
			err = session.DeleteMessage(cmd.MessageID)
		case "add_reaction":
			err = session.AddReaction(cmd.MessageID, cmd.Emoji)
		case "remove_reaction":
			err = session.RemoveReaction(cmd.MessageID, cmd.Emoji)
		case "mark_read":
			err = session.MarkMessageAsRead(cmd.MessageID)
		case "typing_start":
			session.HandleTypingStart()
		case "typing_stop":
			session.HandleTypingStop()
		}
		if err != nil {
			client.Enqueue(gin.H{"type": "error", "action": cmd.Action, "error": err.Error()})
		}
	})

	session.SetEventHandler(func(event realtime.Event) {
		client.Enqueue(event)
	})

	client.Enqueue(gin.H{"type": "snapshot", "messages": session.Messages()})
	go client.WritePump()
	client.ReadPump(session.Close)
}

func (ctl *WebSocketController) serveNotice(conn *websocket.Conn, noticeID string, user models.TypingUser) {
	session, err := services.NewNoticeReceiptsSession(ctl.Notices, ctl.Hub, noticeID, user)
	if err != nil {
		log.Printf("[WebSocket] notice session failed for %s: %v", user.UserID, err)
		conn.Close()
		return
	}

	client := realtime.NewClient(conn, user.UserID, user.UserName)
	client.SetCommandHandler(func(cmd realtime.Command) {
		if cmd.Action == "mark_read" {
			if err := session.MarkAsRead(); err != nil {
				client.Enqueue(gin.H{"type": "error", "action": cmd.Action, "error": err.Error()})
			}
		}
	})

	session.SetEventHandler(func(event realtime.Event) {
		client.Enqueue(event)
	})

	client.Enqueue(gin.H{"type": "snapshot", "receipts": session.Receipts(), "read_count": session.ReadCount()})
	go client.WritePump()
	client.ReadPump(session.Close)
}

func (ctl *WebSocketController) serveDirectory(conn *websocket.Conn, user models.TypingUser) {
	directory, err := services.NewConversationDirectory(ctl.Chat, user)
	if err != nil {
		log.Printf("[WebSocket] directory session failed for %s: %v", user.UserID, err)
		conn.Close()
		return
	}

	client := realtime.NewClient(conn, user.UserID, user.UserName)
	directory.SetEventHandler(func(event realtime.Event) {
		// The directory reloads internally; the client gets the fresh list.
		client.Enqueue(gin.H{"type": "conversations", "conversations": directory.Conversations()})
	})

	client.Enqueue(gin.H{"type": "snapshot", "conversations": directory.Conversations()})
	go client.WritePump()
	client.ReadPump(directory.Close)
}
