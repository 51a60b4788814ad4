// Package mail finds timesheet emails over IMAP and downloads their
// attachments for extraction.
package mail

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// Config holds the IMAP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
}

// Attachment is one downloaded email attachment.
type Attachment struct {
	Filename string
	Path     string
}

// Message is a detected timesheet email with its saved attachments.
type Message struct {
	SeqNum          uint32
	From            string
	Subject         string
	Date            time.Time
	MatchedKeywords []string
	Attachments     []Attachment
}

// timesheetKeywords flag a subject line as timesheet-related. Matching is a
// case-insensitive substring test.
var timesheetKeywords = []string{
	"timesheet", "time-sheet", "time sheet", "timecard", "time card",
	"hours", "weekly hours", "work hours", "time log", "time entry",
	"hours worked", "weekly report", "time report", "payroll",
	"schedule", "work schedule", "attendance",
}

// supportedExtensions are the attachment types the extractors can consume.
var supportedExtensions = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true, ".heic": true,
	".xlsx": true, ".xlsm": true, ".xls": true, ".csv": true,
}

// MatchKeywords returns the timesheet keywords found in a subject line.
func MatchKeywords(subject string) []string {
	lowered := strings.ToLower(subject)
	var matches []string
	for _, keyword := range timesheetKeywords {
		if strings.Contains(lowered, keyword) {
			matches = append(matches, keyword)
		}
	}
	return matches
}

// SupportedAttachment reports whether an attachment filename has an
// extension the pipeline can extract from.
func SupportedAttachment(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// sanitizeFilename strips directory components and replaces characters that
// are unsafe in a local filename.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	sanitized := strings.TrimSpace(replacer.Replace(base))
	if sanitized == "" || sanitized == "." || sanitized == ".." {
		return "attachment"
	}
	return sanitized
}

// Detector fetches and filters timesheet email.
type Detector struct {
	config Config
	logger *slog.Logger
}

// NewDetector builds a detector for the given mailbox.
func NewDetector(config Config, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Port == 0 {
		config.Port = 993
	}
	return &Detector{config: config, logger: logger}
}

// Fetch searches INBOX for timesheet emails in [since, before), optionally
// restricted to one sender, downloads their supported attachments into
// downloadDir, and returns the matches newest-first.
func (d *Detector) Fetch(since, before time.Time, senderFilter, downloadDir string) ([]Message, error) {
	address := fmt.Sprintf("%s:%d", d.config.Host, d.config.Port)

	var (
		c   *client.Client
		err error
	)
	if d.config.UseTLS {
		c, err = client.DialTLS(address, nil)
	} else {
		c, err = client.Dial(address)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to imap server %s: %w", address, err)
	}
	defer c.Logout()

	if err := c.Login(d.config.Username, d.config.Password); err != nil {
		return nil, fmt.Errorf("imap login for %s: %w", d.config.Username, err)
	}

	mbox, err := c.Select("INBOX", true)
	if err != nil {
		return nil, fmt.Errorf("select inbox: %w", err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	criteria.Before = before
	if senderFilter != "" {
		criteria.Header.Add("From", senderFilter)
	}

	seqNums, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search inbox: %w", err)
	}
	if len(seqNums) == 0 {
		d.logger.Info("mail: no messages in range",
			"since", since.Format("2006-01-02"),
			"before", before.Format("2006-01-02"),
		)
		return nil, nil
	}

	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir %s: %w", downloadDir, err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	section := &imap.BodySectionName{}
	fetched := make(chan *imap.Message, len(seqNums))

	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}, fetched)
	}()

	var messages []Message
	for msg := range fetched {
		if msg == nil || msg.Envelope == nil {
			continue
		}

		keywords := MatchKeywords(msg.Envelope.Subject)
		if len(keywords) == 0 {
			continue
		}

		from := ""
		if len(msg.Envelope.From) > 0 {
			from = msg.Envelope.From[0].Address()
		}

		attachments, err := d.saveAttachments(msg, section, downloadDir)
		if err != nil {
			d.logger.Warn("mail: failed to read attachments", "seq", msg.SeqNum, "err", err)
			continue
		}
		if len(attachments) == 0 {
			d.logger.Debug("mail: timesheet subject without usable attachments",
				"subject", msg.Envelope.Subject)
			continue
		}

		messages = append(messages, Message{
			SeqNum:          msg.SeqNum,
			From:            from,
			Subject:         msg.Envelope.Subject,
			Date:            msg.Envelope.Date,
			MatchedKeywords: keywords,
			Attachments:     attachments,
		})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Date.After(messages[j].Date)
	})

	d.logger.Info("mail: timesheet emails detected", "count", len(messages))
	return messages, nil
}

// saveAttachments walks one message's MIME parts and writes every supported
// attachment to disk.
func (d *Detector) saveAttachments(msg *imap.Message, section *imap.BodySectionName, downloadDir string) ([]Attachment, error) {
	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("no body section for message %d", msg.SeqNum)
	}

	reader, err := mail.CreateReader(body)
	if err != nil {
		return nil, fmt.Errorf("create mail reader: %w", err)
	}

	var attachments []Attachment
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read mail part: %w", err)
		}

		header, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		filename, err := header.Filename()
		if err != nil || filename == "" {
			continue
		}
		if !SupportedAttachment(filename) {
			d.logger.Debug("mail: skipping unsupported attachment", "filename", filename)
			continue
		}

		sanitized := sanitizeFilename(filename)
		path := filepath.Join(downloadDir, fmt.Sprintf("%d_%s", msg.SeqNum, sanitized))

		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create attachment file %s: %w", path, err)
		}
		if _, err := io.Copy(file, part.Body); err != nil {
			file.Close()
			return nil, fmt.Errorf("write attachment %s: %w", path, err)
		}
		if err := file.Close(); err != nil {
			return nil, fmt.Errorf("close attachment %s: %w", path, err)
		}

		attachments = append(attachments, Attachment{Filename: sanitized, Path: path})
	}

	return attachments, nil
}
