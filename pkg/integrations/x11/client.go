package x11

import (
	"encoding/binary"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"UTF8_STRING",
}

type client struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

func dial(display string) (*client, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to X display %q", display)
	}

	c := &client{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom, len(atomNames)),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to intern atom %s", name)
		}
		c.atoms[name] = reply.Atom
	}

	return c, nil
}

func (c *client) close() {
	c.conn.Close()
}

func (c *client) property(win xproto.Window, atom, typ xproto.Atom, longs uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, win, atom, typ, 0, longs).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (c *client) activeWindowFromProperty() xproto.Window {
	data, err := c.property(c.root, c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil {
		return 0
	}
	return xproto.Window(decodeCardinal(data))
}

func (c *client) activeWindowFromInputFocus() xproto.Window {
	reply, err := xproto.GetInputFocus(c.conn).Reply()
	if err != nil {
		return 0
	}
	return reply.Focus
}

func (c *client) topLevelParent(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(c.conn, win).Reply()
		if err != nil || reply.Parent == c.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (c *client) hasName(win xproto.Window) bool {
	if data, _ := c.property(win, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], 1); len(data) > 0 {
		return true
	}
	data, _ := c.property(win, xproto.AtomWmName, xproto.AtomString, 1)
	return len(data) > 0
}

func (c *client) windowName(win xproto.Window) string {
	if data, err := c.property(win, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], titleLongs); err == nil && len(data) > 0 {
		return trimProperty(data)
	}
	if data, err := c.property(win, xproto.AtomWmName, xproto.AtomString, titleLongs); err == nil && len(data) > 0 {
		return latin1ToString(data)
	}
	return ""
}

func (c *client) windowPID(win xproto.Window) uint32 {
	data, err := c.property(win, c.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil {
		return 0
	}
	return decodeCardinal(data)
}

// decodeCardinal reads a 32-bit property value. xgb talks to the server in
// little-endian order.
func decodeCardinal(data []byte) uint32 {
	if len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

func trimProperty(data []byte) string {
	return strings.TrimRight(string(data), "\x00")
}

// latin1ToString decodes an ICCCM STRING property, which is ISO 8859-1.
func latin1ToString(data []byte) string {
	data = []byte(trimProperty(data))
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
