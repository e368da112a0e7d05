package syncer

import "context"

// ListOfferIDs drains a pager into a flat list of offer ids in discovery
// order. Duplicates are kept as the catalog reports them; fetch failures
// propagate unchanged, retry policy belongs to the transport.
func ListOfferIDs(ctx context.Context, pager OfferPager) ([]string, error) {
	var ids []string
	cursor := ""
	for {
		page, err := pager.FetchPage(ctx, cursor)
		if err != nil {
			return nil, err
		}
		ids = append(ids, page.IDs...)
		if page.Done {
			return ids, nil
		}
		cursor = page.NextCursor
	}
}
