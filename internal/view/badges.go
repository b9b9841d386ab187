package view

import "github.com/Domenick1991/tourbooking/internal/domain"

// Badge is a coloured status label.
type Badge struct {
	Label string
	Class string
}

func BookingBadge(s domain.BookingStatus) Badge {
	switch s {
	case domain.BookingStatusPending:
		return Badge{"Pending", "badge-warning"}
	case domain.BookingStatusConfirmed:
		return Badge{"Confirmed", "badge-success"}
	case domain.BookingStatusCancelled:
		return Badge{"Cancelled", "badge-danger"}
	case domain.BookingStatusCompleted:
		return Badge{"Completed", "badge-info"}
	default:
		return Badge{string(s), "badge-secondary"}
	}
}

func PaymentBadge(s domain.PaymentStatus) Badge {
	switch s {
	case domain.PaymentStatusPending:
		return Badge{"Unpaid", "badge-warning"}
	case domain.PaymentStatusCompleted:
		return Badge{"Paid", "badge-success"}
	case domain.PaymentStatusFailed:
		return Badge{"Failed", "badge-danger"}
	case domain.PaymentStatusRefunded:
		return Badge{"Refunded", "badge-info"}
	default:
		return Badge{string(s), "badge-secondary"}
	}
}

func TourBadge(s domain.TourStatus) Badge {
	switch s {
	case domain.TourStatusAvailable:
		return Badge{"Available", "badge-success"}
	case domain.TourStatusFull:
		return Badge{"Full", "badge-warning"}
	case domain.TourStatusCancelled:
		return Badge{"Cancelled", "badge-danger"}
	case domain.TourStatusCompleted:
		return Badge{"Completed", "badge-secondary"}
	default:
		return Badge{string(s), "badge-secondary"}
	}
}

func RoleBadge(r domain.Role) Badge {
	switch r {
	case domain.RoleAdmin:
		return Badge{"Admin", "badge-danger"}
	case domain.RoleStaff:
		return Badge{"Staff", "badge-info"}
	default:
		return Badge{"Customer", "badge-secondary"}
	}
}

func NotificationClass(t domain.NotificationType) string {
	switch t {
	case domain.NotificationSuccess:
		return "alert-success"
	case domain.NotificationError:
		return "alert-danger"
	case domain.NotificationWarning:
		return "alert-warning"
	default:
		return "alert-info"
	}
}
