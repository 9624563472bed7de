package service

import (
	"fmt"
	"strings"

	"github.com/rl1809/inventory-bot/internal/core/domain"
)

const (
	msgWelcome      = "Welcome to the inventory bot! Please enter the access password."
	msgWrongPass    = "Wrong password, try again."
	msgAuthorized   = "Access granted. Use /help to see available commands."
	msgUnauthorized = "You are not authorized yet. Send /start and enter the password."
	msgNoSession    = "Nothing in progress. Use /help to see available commands."
	msgCancelled    = "Cancelled."
	msgEmpty        = "Inventory is empty."
	msgInternal     = "Internal error: the inventory could not be saved. Nothing was changed."

	msgHelp = "/start - enter the access password\n" +
		"/add - add stock to an existing item\n" +
		"/add new [item] - create a new item\n" +
		"/add <item> <quantity> [new] - add in one message\n" +
		"/sell - record a sale\n" +
		"/sell <item> <quantity> - record a sale in one message\n" +
		"/limit - set the low-stock alarm limit of an item\n" +
		"/limit <item> <limit> - set the alarm limit in one message\n" +
		"/remove - delete an item completely\n" +
		"/remove <item> - delete an item in one message\n" +
		"/remove <item> <quantity> [totally] - take stock out, or delete with totally\n" +
		"/view [item] [full] - view the inventory or one item\n" +
		"/cancel - abort the current operation\n" +
		"/help - show this help message"
)

func promptFor(sess domain.Session, hasItems bool) string {
	switch sess.State {
	case domain.StateAwaitingPassword:
		return msgWelcome
	case domain.StateEnteringName:
		return "Enter the name of the new item:"
	case domain.StateSelectingItem:
		verb := map[domain.Action]string{
			domain.ActionAdd:    "restock",
			domain.ActionSell:   "sell",
			domain.ActionLimit:  "set the alarm limit for",
			domain.ActionRemove: "remove",
		}[sess.Action]
		if !hasItems {
			return fmt.Sprintf("Inventory is empty. Type the name of the item to %s:", verb)
		}
		return fmt.Sprintf("Choose an item to %s:", verb)
	case domain.StateEnteringQuantity:
		if sess.Action == domain.ActionSell {
			return fmt.Sprintf("How many '%s' were sold?", sess.Item)
		}
		return fmt.Sprintf("How many '%s' to add?", sess.Item)
	case domain.StateEnteringAlarmLimit:
		return fmt.Sprintf("Enter the alarm limit for '%s' (you will be warned when the quantity drops below it):", sess.Item)
	}
	return msgNoSession
}

func notNumber(text string) string {
	return fmt.Sprintf("'%s' is not a whole number (0 or more). ", text)
}

func notFound(name string) string {
	return fmt.Sprintf("Item '%s' not found in inventory. Use /add new to create it.", name)
}

func lowStockWarning(item domain.Item) string {
	return fmt.Sprintf("⚠️ Low stock: '%s' has %d left (alarm limit %d).", item.Name, item.Quantity, *item.AlarmLimit)
}

func formatItem(item domain.Item, full bool) string {
	line := fmt.Sprintf("%s => %d", item.Name, item.Quantity)
	if !full {
		return line
	}
	if item.AlarmLimit == nil {
		return line + " (no alarm limit)"
	}
	line += fmt.Sprintf(" (alarm limit %d)", *item.AlarmLimit)
	if item.Low() {
		line += " ⚠️"
	}
	return line
}

func formatInventory(items []domain.Item, full bool) string {
	if len(items) == 0 {
		return msgEmpty
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = formatItem(item, full)
	}
	return "Inventory:\n" + strings.Join(lines, "\n")
}
