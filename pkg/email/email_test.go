package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBanNoticeBody(t *testing.T) {
	end := time.Date(2030, 1, 2, 3, 4, 0, 0, time.UTC)

	assert.Contains(t, BanNoticeBody("alice", nil), "banned permanently")
	assert.Contains(t, BanNoticeBody("alice", &end), "until 2030-01-02 03:04 UTC")
	assert.Contains(t, BanNoticeBody("<b>x</b>", nil), "&lt;b&gt;x&lt;/b&gt;")
}

func TestWarnNoticeBody(t *testing.T) {
	assert.Contains(t, WarnNoticeBody("bob", 2, 3), "(2 of 3)")
}
