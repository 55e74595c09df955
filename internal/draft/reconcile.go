package draft

import (
	"github.com/dmoura/orderdraft-backend/internal/erp"
	"github.com/dmoura/orderdraft-backend/pkg/db/models"
)

// BuildBatch partitions a draft into the add/edit/remove payload the ERP
// batch endpoint expects. Unsaved live lines become adds, persisted live
// lines become edits, and tombstones become removes; a line lands in exactly
// one list. The line row id rides along as the client_ref so new server ids
// can be merged back without guessing.
func BuildBatch(d *Draft) erp.BatchRequest {
	var batch erp.BatchRequest
	for _, line := range d.Lines {
		switch {
		case line.Removed:
			if line.ServerID != nil {
				batch.Remove = append(batch.Remove, erp.BatchItemDelete{ServerID: *line.ServerID})
			}
		case line.ServerID == nil:
			batch.Add = append(batch.Add, erp.BatchItemCreate{
				ClientRef:       line.ID.String(),
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				UnitPrice:       line.UnitPrice,
				DiscountEnabled: line.DiscountEnabled,
				DiscountMode:    line.DiscountMode,
				DiscountPercent: line.DiscountPercent,
				DiscountAmount:  line.DiscountAmount,
				LineTotal:       LineTotal(line),
			})
		default:
			batch.Edit = append(batch.Edit, erp.BatchItemEdit{
				ServerID:        *line.ServerID,
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				UnitPrice:       line.UnitPrice,
				DiscountEnabled: line.DiscountEnabled,
				DiscountMode:    line.DiscountMode,
				DiscountPercent: line.DiscountPercent,
				DiscountAmount:  line.DiscountAmount,
				LineTotal:       LineTotal(line),
			})
		}
	}
	return batch
}

// MergeAssigned folds the server's created-item echo back into the draft:
// each created item is matched to its unsaved line by client_ref, falling
// back to product id for backends that drop the ref, and the assigned server
// id is attached. Tombstones are cleared afterwards since their deletions
// are now upstream.
func MergeAssigned(d *Draft, created []erp.CreatedItem) {
	for _, item := range created {
		line := matchUnsaved(d, item)
		if line == nil {
			continue
		}
		serverID := item.ServerID
		line.ServerID = &serverID
	}

	kept := d.Lines[:0]
	for _, line := range d.Lines {
		if !line.Removed {
			kept = append(kept, line)
		}
	}
	d.Lines = kept
}

func matchUnsaved(d *Draft, item erp.CreatedItem) *models.DraftLineItem {
	if item.ClientRef != "" {
		for i := range d.Lines {
			line := &d.Lines[i]
			if !line.Removed && line.ServerID == nil && line.ID.String() == item.ClientRef {
				return line
			}
		}
	}
	for i := range d.Lines {
		line := &d.Lines[i]
		if !line.Removed && line.ServerID == nil && line.ProductID == item.ProductID {
			return line
		}
	}
	return nil
}
