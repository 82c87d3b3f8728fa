package server

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/bryanl/solidity-language-server/pkg/lsp"
)

// LogMessages causes all messages sent and received on a transport to be
// logged using the provided logger.
func LogMessages(log logrus.FieldLogger) []lsp.TransportOpt {
	// Remember requests we have received so we can show the request method
	// for responses.
	reqMethods := map[string]string{}

	onRecv := lsp.OnRecv(func(m *lsp.Message) {
		params := string(m.Params)
		switch {
		case m.IsResponse():
			log.Debugf("--> result #%s: %s", m.ID, m.Result)
		case m.ID == nil:
			log.Debugf("--> notif: %s: %s", m.Method, params)
		default:
			reqMethods[m.ID.String()] = m.Method
			log.Debugf("--> request #%s: %s: %s", m.ID, m.Method, params)
		}
	})

	onSend := lsp.OnSend(func(v interface{}) {
		switch v := v.(type) {
		case *lsp.NotificationMessage:
			params, _ := json.Marshal(v.Params)
			log.Debugf("<-- notif: %s: %s", v.Method, params)
		case *lsp.ResponseMessage:
			method := "(no previous request)"
			if v.ID != nil {
				if m, ok := reqMethods[v.ID.String()]; ok {
					method = m
					delete(reqMethods, v.ID.String())
				}
			}

			if v.Error != nil {
				err, _ := json.Marshal(v.Error)
				log.Debugf("<-- error #%s: %s: %s", v.ID, method, err)
			} else {
				result, _ := json.Marshal(v.Result)
				log.Debugf("<-- result #%s: %s: %s", v.ID, method, result)
			}
		}
	})

	return []lsp.TransportOpt{onRecv, onSend}
}
