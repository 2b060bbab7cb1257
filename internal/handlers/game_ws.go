// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tectoast/wizard/internal/game"
	"github.com/tectoast/wizard/internal/middleware"
	"github.com/tectoast/wizard/internal/socket"
)

// MessageCounter counts inbound messages by type.
type MessageCounter interface {
	IncMessagesReceived(msgType string)
}

// GameServer owns the websocket endpoint: it registers connections with the socket manager
// and routes their messages to games.
type GameServer struct {
	Games          *game.Manager
	Sockets        *socket.Manager
	Resolver       UsernameResolver
	OriginPatterns []string
	Counter        MessageCounter
	Logger         *logrus.Logger
}

// session is the per-connection routing state.
type session struct {
	user    string
	current *game.Game
	log     *logrus.Entry
}

// GameWSHandler upgrades the request, resolves the username, registers the connection and
// reads frames until the socket closes.
func (s *GameServer) GameWSHandler(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.OriginPatterns,
	})
	if err != nil {
		s.Logger.WithError(err).Warn("websocket accept error")
		return
	}
	defer c.Close(websocket.StatusInternalError, "internal server error during handler exit")

	ctx := r.Context()
	username, err := s.Resolver.Resolve(ctx, r, c)
	if err != nil {
		s.Logger.WithError(err).WithField("remote", r.RemoteAddr).Warn("websocket authentication failed")
		code := InvalidAuthTokenError
		if _, dev := s.Resolver.(DevResolver); dev {
			code = InvalidUsernameError
		}
		c.Close(code, "authentication failed")
		return
	}

	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)
	conn := socket.NewConn(username, c, s.Logger)
	s.Sockets.Register(conn)

	sess := &session{
		user: username,
		log:  s.Logger.WithFields(logrus.Fields{"user": username, "remote": r.RemoteAddr}),
	}
	s.Sockets.Send(username, game.NewLoginResponse(&username))
	s.Games.SendOpenGames(username)

	err = s.readMessages(ctx, c, sess)

	s.Sockets.Unregister(conn)
	conn.Close(websocket.StatusNormalClosure, "")
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, err)
}

// readMessages reads frames in order until the connection ends. Undecodable frames are
// logged and skipped.
func (s *GameServer) readMessages(ctx context.Context, c *websocket.Conn, sess *session) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			sess.log.Warnf("ignoring non-text message type %d", msgType)
			continue
		}

		msg, err := game.DecodeClientMessage(data)
		if err != nil {
			sess.log.WithError(err).Warn("invalid message")
			continue
		}
		if s.Counter != nil {
			s.Counter.IncMessagesReceived(string(msg.Type))
		}
		if err := s.handle(sess, msg); err != nil {
			return err
		}
	}
}

// handle routes one message. A panic ends only this connection.
func (s *GameServer) handle(sess *session, msg game.ClientMessage) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			sess.log.WithFields(logrus.Fields{
				"type":  msg.Type,
				"panic": rec,
				"stack": string(debug.Stack()),
			}).Error("panic while handling message")
			err = fmt.Errorf("panic handling %s: %v", msg.Type, rec)
		}
	}()

	sess.log.WithField("type", msg.Type).Debug("received message")

	switch msg.Type {
	case game.MsgCreateGame:
		g := s.Games.Create(sess.user)
		sess.current = g
		s.Sockets.Send(sess.user, game.NewGameCreated(g.ID))
		s.Games.BroadcastOpenGames()

	case game.MsgJoinGame:
		g, ok := s.Games.Get(*msg.GameID)
		if !ok {
			s.Sockets.Send(sess.user, game.NewRedirectHome())
			return nil
		}
		if g.Join(sess.user) {
			sess.current = g
		}

	case game.MsgDeleteGame:
		if !s.Games.Delete(*msg.GameID, sess.user) {
			sess.log.WithField("game", *msg.GameID).Debug("delete rejected")
			return nil
		}
		if sess.current != nil && sess.current.ID == *msg.GameID {
			sess.current = nil
		}

	case game.MsgLeaveGame:
		g, ok := s.Games.Get(*msg.GameID)
		if !ok {
			return nil
		}
		g.HandleMessage(sess.user, msg)
		if sess.current == g {
			sess.current = nil
		}

	default:
		if sess.current == nil {
			sess.log.WithField("type", msg.Type).Debug("no current game, message dropped")
			return nil
		}
		sess.current.HandleMessage(sess.user, msg)
	}
	return nil
}
