package emailsvc

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/campusvoice/backend/core"
)

var (
	// SentMessages collects sent emails; inspected by tests.
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

// ClearSentMessages resets the captured messages between tests.
func ClearSentMessages() {
	mu.Lock()
	defer mu.Unlock()
	SentMessages = SentMessages[:0]
}

type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
}

var _ core.EmailService = (*consoleService)(nil)

// NewConsoleService returns an EmailService that prints messages to stdout.
func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

// NewConsoleServiceMock captures messages without printing them.
func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		disableOutput:    true,
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		log.Printf("%+v", errors.Wrap(err, "rendering email"))
		return
	}
	if msg.HasRecipients() && msg.HasContent() {
		if !svc.disableOutput {
			svc.print(*msg)
		}
		mu.Lock()
		SentMessages = append(SentMessages, *msg)
		mu.Unlock()
	}
}

func (svc consoleService) print(msg core.EmailMessage) {
	body := new(strings.Builder)

	fmt.Fprintf(body, "From: %s\n", svc.defaultFromEmail.String())
	fmt.Fprintf(body, "To: %s\n", joinAddresses(msg.To))
	if len(msg.Cc) > 0 {
		fmt.Fprintf(body, "Cc: %s\n", joinAddresses(msg.Cc))
	}
	fmt.Fprintf(body, "Date: %s\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(body, "Subject: %s%s\n\n", svc.subjPrefix, msg.Subject)
	body.WriteString(msg.TextContent)

	log.Println(body.String())
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		strs = append(strs, addr.String())
	}
	return strings.Join(strs, ", ")
}
