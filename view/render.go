package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/itiky/employee-sync/model"
	"github.com/itiky/employee-sync/service/client"
)

// RenderCards prints one card per record in the list order.
func RenderCards(w io.Writer, list model.RecordList) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No employees")
		return
	}

	str := strings.Builder{}
	for _, item := range list {
		str.WriteString(fmt.Sprintf("[%s]\n", item.Id))
		str.WriteString(fmt.Sprintf("  Name: %s\n", item.Name))
		str.WriteString(fmt.Sprintf("  Salary: %s\n", item.Salary))
		str.WriteString(fmt.Sprintf("  Age: %s\n", item.Age))
	}
	fmt.Fprint(w, str.String())
}

// FormTitle returns the form overlay title.
func FormTitle(state client.FormState) string {
	if state == client.FormOpenForUpdate {
		return "Update Employee"
	}

	return "Add Employee"
}

// RenderForm prints the form overlay (nothing if the form is closed).
func RenderForm(w io.Writer, state client.FormState, edit model.PendingEdit) {
	if state == client.FormClosed {
		fmt.Fprintln(w, "Form is closed")
		return
	}

	str := strings.Builder{}
	str.WriteString(FormTitle(state))
	if state == client.FormOpenForUpdate {
		str.WriteString(fmt.Sprintf(" (%s)", edit.TargetId))
	}
	str.WriteString("\n")
	str.WriteString(fmt.Sprintf("  Name: %s\n", edit.Name))
	str.WriteString(fmt.Sprintf("  Salary: %s\n", edit.Salary))
	str.WriteString(fmt.Sprintf("  Age: %s\n", edit.Age))
	fmt.Fprint(w, str.String())
}
