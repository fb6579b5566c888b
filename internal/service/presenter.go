package service

import "shopify-ar-delivery/internal/model"

type PresentationMode int

const (
	PresentRedirect PresentationMode = iota
	PresentList
)

// Presentation is the delivery decision for the synchronous pull path:
// either a redirect to the single deliverable or an ordered listing.
type Presentation struct {
	Mode     PresentationMode
	Location string
	Links    []model.DeliverableLink
}

// Present picks between redirect and listing. Pure: the choice depends
// only on the link count and the caller's redirect flag. Zero links is
// the caller's not-found path and never reaches here.
func Present(links []model.DeliverableLink, autoRedirect bool) Presentation {
	if autoRedirect && len(links) == 1 {
		return Presentation{Mode: PresentRedirect, Location: links[0].URL}
	}
	return Presentation{Mode: PresentList, Links: links}
}
