package server

import "html/template"

type indexPage struct {
	Group      string
	Page       int64
	TotalPages int64
	HasPrev    bool
	HasNext    bool
	Rows       []indexRow
}

func (p indexPage) PrevPage() int64 { return p.Page - 1 }
func (p indexPage) NextPage() int64 { return p.Page + 1 }

type indexRow struct {
	ID      int64
	Subject string
	Author  string
	Date    string
}

type articlePage struct {
	ID          int64
	Subject     string
	Author      string
	Date        string
	ReplyURL    string
	Body        template.HTML // escaped, newlines already turned into <br>
	Attachments []attachmentView
}

type attachmentView struct {
	Index       int
	Name        string
	ContentType string
	Size        int
	Image       bool
	DataURI     template.URL
}
